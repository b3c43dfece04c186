package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentbrain/brain/internal/jsonldb"
	"github.com/agentbrain/brain/internal/models"
)

// ValidationReport collects everything a validation pass over the committed
// store found. Errors mean the store is broken; warnings are advisories the
// caller decides what to do with.
type ValidationReport struct {
	Errors       []string             `json:"errors"`
	Warnings     []string             `json:"warnings"`
	Contaminants []models.Contaminant `json:"contaminants,omitempty"`
	Backrefs     []models.Backref     `json:"backrefs,omitempty"`
}

// OK reports whether the pass found no errors.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the committed store. With full set, it additionally runs
// the contamination and back-reference detectors. Validation never mutates
// anything.
func (s *Store) Validate(full bool) (*ValidationReport, error) {
	report := &ValidationReport{}

	required := []string{
		s.policyPath(),
		s.indexPath(FileRecords),
		s.indexPath(FileManifest),
		s.indexPath(FileTags),
		s.indexPath(FileFolders),
	}
	missing := false
	for _, path := range required {
		if _, err := os.Stat(path); err != nil {
			report.errorf("required file missing: %s", path)
			missing = true
		}
	}
	if missing {
		return report, nil
	}

	policy, err := s.loadPolicy()
	if err != nil {
		report.errorf("policy unreadable: %v", err)
		return report, nil
	}

	records, err := jsonldb.ReadFile[models.Record](s.indexPath(FileRecords))
	if err != nil {
		report.errorf("records unreadable: %v", err)
		return report, nil
	}
	manifest, err := readManifest(s.indexPath(FileManifest))
	if err != nil {
		report.errorf("manifest unreadable: %v", err)
		return report, nil
	}

	s.checkRecords(records, policy, report)
	s.checkManifest(manifest, report)

	indexDir := filepath.Join(s.root, DirIndex)
	for _, suffix := range []string{tmpSuffix, bakSuffix} {
		residue, err := scanResidue(indexDir, suffix)
		if err != nil {
			report.errorf("failed to scan index folder: %v", err)
			continue
		}
		for _, name := range residue {
			report.warnf("transaction residue in index folder: %s", name)
		}
	}

	if full {
		report.Contaminants = DetectContamination(records)
		for _, c := range report.Contaminants {
			report.warnf("contamination: %s is %s but sourced from %s", c.RecordID, c.Type, c.SourceType)
		}
		report.Backrefs = DetectBackrefs(records)
		for _, b := range report.Backrefs {
			report.warnf("active %s references deprecated %s in its %s", b.ActiveID, b.DeprecatedID, b.Field)
		}
	}
	return report, nil
}

// checkRecords applies the per-record rules plus sequence-wide uniqueness and
// the growth warning.
func (s *Store) checkRecords(records []models.Record, policy *models.Policy, report *ValidationReport) {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		for _, p := range r.Problems() {
			report.errorf("%s: %s", r.RecordID, p)
		}
		if seen[r.RecordID] {
			report.errorf("%s: duplicate recordId", r.RecordID)
		}
		seen[r.RecordID] = true
	}
	limit := models.DefaultMaxRecordsWarn
	if policy != nil && policy.MaxRecordsWarn > 0 {
		limit = policy.MaxRecordsWarn
	}
	if len(records) > limit {
		report.warnf("record count %d exceeds %d; consider archiving", len(records), limit)
	}
}

// checkManifest verifies every manifest entry against the disk. A mismatch
// in the committed store is a warning, since the likely cause is a manual
// edit the operator should reconcile; the staged equivalent inside a
// transaction is a hard error raised by the engine's pre-commit validation.
func (s *Store) checkManifest(manifest *models.Manifest, report *ValidationReport) {
	for _, entry := range manifest.Files {
		path := s.docPath(entry.Path)
		if _, err := os.Stat(path); err != nil {
			report.warnf("manifest entry %s: file missing (manual-edit suspected)", entry.Path)
			continue
		}
		actual, err := jsonldb.HashFile(path)
		if err != nil {
			report.errorf("manifest entry %s: %v", entry.Path, err)
			continue
		}
		if actual != entry.Hash {
			report.warnf("manifest entry %s: hash mismatch (manual-edit suspected)", entry.Path)
		}
	}
}
