package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentbrain/brain/internal/jsonldb"
	"github.com/agentbrain/brain/internal/models"
	"gopkg.in/yaml.v3"
)

// userProfileRel is the optional profile document consulted when the caller
// boots without declaring a scope.
var userProfileRel = filepath.Join(DirUser, "profile.md")

// BootResult is what a boot hands back to the caller: the governing policy,
// every drift mismatch found, the contamination advisory, and the scope to
// shape downstream queries with.
type BootResult struct {
	Policy       *models.Policy         `json:"policy"`
	Mismatches   []models.DriftMismatch `json:"mismatches"`
	Contaminants []models.Contaminant   `json:"contaminants,omitempty"`
	Scope        *models.Scope          `json:"scope,omitempty"`
}

// Boot loads the policy and manifest, verifies every manifest entry against
// the disk, and declares the working scope. Boot never writes; drift is
// reported for the caller to reconcile.
func (s *Store) Boot(scope *models.Scope) (*BootResult, error) {
	policy, err := s.loadPolicy()
	if err != nil {
		return nil, err
	}
	manifest, err := readManifest(s.indexPath(FileManifest))
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	result := &BootResult{
		Policy:     policy,
		Mismatches: s.driftCheck(manifest),
	}
	if records, err := jsonldb.ReadFile[models.Record](s.indexPath(FileRecords)); err == nil {
		result.Contaminants = DetectContamination(records)
	}

	if scope != nil {
		result.Scope = scope
		return result, nil
	}
	result.Scope = s.loadProfileScope()
	return result, nil
}

// driftCheck compares every manifest entry with the on-disk file. Each
// mismatch is collected; none is fatal.
func (s *Store) driftCheck(manifest *models.Manifest) []models.DriftMismatch {
	var mismatches []models.DriftMismatch
	for _, entry := range manifest.Files {
		path := s.docPath(entry.Path)
		if _, err := os.Stat(path); err != nil {
			mismatches = append(mismatches, models.DriftMismatch{
				Path:     entry.Path,
				Reason:   "missing",
				Expected: entry.Hash,
			})
			continue
		}
		actual, err := jsonldb.HashFile(path)
		if err != nil {
			mismatches = append(mismatches, models.DriftMismatch{
				Path:     entry.Path,
				Reason:   "missing",
				Expected: entry.Hash,
			})
			continue
		}
		if actual != entry.Hash {
			mismatches = append(mismatches, models.DriftMismatch{
				Path:     entry.Path,
				Reason:   "hash mismatch",
				Expected: entry.Hash,
				Actual:   actual,
			})
		}
	}
	return mismatches
}

// loadPolicy reads and parses the policy document. The store cannot operate
// without it.
func (s *Store) loadPolicy() (*models.Policy, error) {
	data, err := os.ReadFile(s.policyPath())
	if err != nil {
		return nil, fmt.Errorf("policy document unavailable, run init first: %w", err)
	}
	policy, err := models.ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy document malformed: %w", err)
	}
	return policy, nil
}

// loadProfileScope derives a fallback scope from the optional user profile
// document's front matter. Absence or a malformed profile just means no
// scope.
func (s *Store) loadProfileScope() *models.Scope {
	data, err := os.ReadFile(filepath.Join(s.root, userProfileRel))
	if err != nil {
		return nil
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		return nil
	}
	parts := strings.SplitN(content, "\n---\n", 2)
	if len(parts) != 2 {
		return nil
	}
	scope := &models.Scope{}
	if err := yaml.Unmarshal([]byte(parts[0][4:]), scope); err != nil {
		return nil
	}
	if !scope.ScopeType.Valid() || !models.ValidSlug(scope.ScopeID) {
		return nil
	}
	return scope
}
