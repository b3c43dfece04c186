package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentbrain/brain/internal/errors"
	"github.com/agentbrain/brain/internal/jsonldb"
	"github.com/agentbrain/brain/internal/models"
)

// CheckTransition validates a lifecycle state change. Allowed moves:
// active→deprecated, active→archived, deprecated→active. Archived is
// terminal.
func CheckTransition(from, to models.Status) error {
	switch {
	case from == models.StatusActive && (to == models.StatusDeprecated || to == models.StatusArchived):
		return nil
	case from == models.StatusDeprecated && to == models.StatusActive:
		return nil
	}
	return errors.LifecycleDenied(fmt.Sprintf("transition %s → %s is not allowed", from, to))
}

// DeleteGate checks the preconditions for physical removal of a record and
// returns every unmet one, so the caller can show them all at once. An empty
// result means the delete may proceed.
func DeleteGate(r *models.Record, sessionStart time.Time, userConfirmed bool) []string {
	var unmet []string
	if r.Status != models.StatusDeprecated {
		unmet = append(unmet, fmt.Sprintf("record is %s; only deprecated records can be deleted", r.Status))
	}
	updated, err := models.ParseTimestamp(r.UpdatedAt)
	if err != nil || !updated.Before(sessionStart) {
		unmet = append(unmet, "record was touched in the current session; deprecate and delete in separate sessions")
	}
	if r.ReplacedBy == nil {
		unmet = append(unmet, "record has no replacedBy; deprecate it properly first")
	}
	if !userConfirmed {
		unmet = append(unmet, "deletion requires explicit user confirmation")
	}
	return unmet
}

// CanPromote reports whether a record may become a single-source-of-truth
// type. Only user-confirmed sources qualify.
func CanPromote(sourceType models.SourceType) bool {
	return sourceType == models.SourceUserConfirmed
}

// DetectContamination flags active SSOT-typed records whose source was never
// confirmed by the user. Contamination never blocks a write; it is an
// advisory surfaced by boot and by full validation.
func DetectContamination(records []models.Record) []models.Contaminant {
	var found []models.Contaminant
	for _, r := range records {
		if r.Status != models.StatusActive || !r.Type.IsSSOT() {
			continue
		}
		if r.SourceType == models.SourceInference || r.SourceType == models.SourceCandidate {
			found = append(found, models.Contaminant{
				RecordID:   r.RecordID,
				Type:       r.Type,
				SourceType: r.SourceType,
			})
		}
	}
	return found
}

// DetectBackrefs reports active records whose sourceRef or summary still
// mentions a deprecated record's ID.
func DetectBackrefs(records []models.Record) []models.Backref {
	var deprecated []string
	for _, r := range records {
		if r.Status == models.StatusDeprecated {
			deprecated = append(deprecated, r.RecordID)
		}
	}
	if len(deprecated) == 0 {
		return nil
	}
	var found []models.Backref
	for _, r := range records {
		if r.Status != models.StatusActive {
			continue
		}
		for _, id := range deprecated {
			if strings.Contains(r.SourceRef, id) {
				found = append(found, models.Backref{ActiveID: r.RecordID, DeprecatedID: id, Field: "sourceRef"})
			}
			if strings.Contains(r.Summary, id) {
				found = append(found, models.Backref{ActiveID: r.RecordID, DeprecatedID: id, Field: "summary"})
			}
		}
	}
	return found
}

// Contamination loads the committed records and runs the contamination
// detector over them.
func (s *Store) Contamination() ([]models.Contaminant, error) {
	records, err := jsonldb.ReadFile[models.Record](s.indexPath(FileRecords))
	if err != nil {
		return nil, errors.IOFault("failed to load records", err)
	}
	return DetectContamination(records), nil
}

// GateDelete resolves a record and runs the delete gate against it. The
// engine's delete intent does not re-check these; callers run this first.
func (s *Store) GateDelete(recordID string, sessionStart time.Time, userConfirmed bool) ([]string, error) {
	records, err := jsonldb.ReadFile[models.Record](s.indexPath(FileRecords))
	if err != nil {
		return nil, errors.IOFault("failed to load records", err)
	}
	for i := range records {
		if records[i].RecordID == recordID {
			return DeleteGate(&records[i], sessionStart, userConfirmed), nil
		}
	}
	return nil, errors.NotFound(recordID)
}
