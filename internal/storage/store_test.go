package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentbrain/brain/internal/models"
)

// testClockBase is the frozen day test stores run on.
var testClockBase = time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)

// newTestStore returns an initialized store in a temp root whose clock ticks
// one second per reading, so timestamps stay deterministic but distinct.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	ticks := 0
	s.now = func() time.Time {
		ticks++
		return testClockBase.Add(time.Duration(ticks) * time.Second)
	}
	if _, err := s.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return s
}

// noteIntent builds the canonical create intent used across the write tests.
func noteIntent() *models.Intent {
	content := "# V2 테스트\nBWT 검증용 문서"
	return &models.Intent{
		Action:    models.ActionCreate,
		SourceRef: "30_topics/v2-test/notes.md",
		Content:   &content,
		Record: &models.Draft{
			ScopeType:  models.ScopeTopic,
			ScopeID:    "v2-test",
			Type:       models.TypeNote,
			Title:      "V2 검증 노트",
			Summary:    "BWT V2 체크리스트 검증",
			Tags:       []string{"domain/memory", "intent/debug"},
			SourceType: models.SourceCandidate,
		},
	}
}

// mustWrite submits an intent and fails the test on an unsuccessful
// response.
func mustWrite(t *testing.T, s *Store, intent *models.Intent) *models.WriteResponse {
	t.Helper()
	resp := s.Write(intent)
	if !resp.Success {
		t.Fatalf("write failed at step %s: %s (%v)", resp.Report.Step, resp.Report.Message, resp.Report.Errors)
	}
	return resp
}

// readIndex reads the three index artifacts raw, for byte-level comparisons.
func readIndex(t *testing.T, s *Store) map[string][]byte {
	t.Helper()
	state := map[string][]byte{}
	for _, name := range []string{FileRecords, FileManifest, FileDigest} {
		data, err := os.ReadFile(s.indexPath(name))
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		state[name] = data
	}
	return state
}

// assertNoResidue fails if any transaction side file survives in the index
// folder.
func assertNoResidue(t *testing.T, s *Store) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.root, DirIndex))
	if err != nil {
		t.Fatalf("failed to read index folder: %v", err)
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if ext == tmpSuffix || ext == bakSuffix {
			t.Errorf("residue left in index folder: %s", e.Name())
		}
	}
}
