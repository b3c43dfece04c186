package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentbrain/brain/internal/models"
)

func TestBootCleanStore(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, noteIntent())

	result, err := s.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if result.Policy == nil || result.Policy.MaxRecordsWarn != models.DefaultMaxRecordsWarn {
		t.Errorf("policy not loaded: %+v", result.Policy)
	}
	if len(result.Mismatches) != 0 {
		t.Errorf("clean store must have no drift: %v", result.Mismatches)
	}
	if result.Scope != nil {
		t.Errorf("no profile, no caller scope: expected nil, got %+v", result.Scope)
	}
}

func TestBootDetectsManualEdit(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, noteIntent())

	if err := os.WriteFile(s.docPath("30_topics/v2-test/notes.md"), []byte("다른 내용"), 0o644); err != nil {
		t.Fatalf("failed to overwrite document: %v", err)
	}

	result, err := s.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if len(result.Mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %v", result.Mismatches)
	}
	m := result.Mismatches[0]
	if m.Path != "30_topics/v2-test/notes.md" || m.Reason != "hash mismatch" {
		t.Errorf("unexpected mismatch: %+v", m)
	}
}

func TestBootDetectsMissingFile(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, noteIntent())

	if err := os.Remove(s.docPath("30_topics/v2-test/notes.md")); err != nil {
		t.Fatalf("failed to remove document: %v", err)
	}

	result, err := s.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if len(result.Mismatches) != 1 || result.Mismatches[0].Reason != "missing" {
		t.Errorf("expected a missing mismatch, got %v", result.Mismatches)
	}
}

func TestBootRequiresPolicy(t *testing.T) {
	s := newTestStore(t)
	if err := os.Remove(s.policyPath()); err != nil {
		t.Fatalf("failed to remove policy: %v", err)
	}
	if _, err := s.Boot(nil); err == nil {
		t.Error("boot without a policy must fail")
	}
}

func TestBootScopePassthrough(t *testing.T) {
	s := newTestStore(t)
	scope := &models.Scope{ScopeType: models.ScopeProject, ScopeID: "my-proj"}
	result, err := s.Boot(scope)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if result.Scope != scope {
		t.Errorf("caller scope must be returned verbatim, got %+v", result.Scope)
	}
}

func TestBootScopeFromProfile(t *testing.T) {
	s := newTestStore(t)
	profile := "---\nscopeType: user\nscopeId: jane\n---\n\n# Profile\n"
	if err := os.WriteFile(filepath.Join(s.root, userProfileRel), []byte(profile), 0o644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	result, err := s.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if result.Scope == nil || result.Scope.ScopeType != models.ScopeUser || result.Scope.ScopeID != "jane" {
		t.Errorf("scope not derived from profile: %+v", result.Scope)
	}
}

func TestBootSurfacesContamination(t *testing.T) {
	s := newTestStore(t)
	intent := noteIntent()
	intent.Record.Type = models.TypeRule
	intent.Record.SourceType = models.SourceInference
	created := mustWrite(t, s, intent)

	result, err := s.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if len(result.Contaminants) != 1 || result.Contaminants[0].RecordID != created.RecordID {
		t.Errorf("expected the inferred rule flagged, got %v", result.Contaminants)
	}
}
