package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/agentbrain/brain/internal/models"
)

func TestValidateFreshStore(t *testing.T) {
	s := newTestStore(t)
	report, err := s.Validate(false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("fresh store must validate clean: %v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("fresh store must have no warnings: %v", report.Warnings)
	}
}

func TestValidateMissingRequiredFiles(t *testing.T) {
	s := newTestStore(t)
	if err := os.Remove(s.policyPath()); err != nil {
		t.Fatalf("failed to remove policy: %v", err)
	}
	report, err := s.Validate(false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if report.OK() {
		t.Error("missing policy must be an error")
	}
}

func TestValidateManualEditIsWarning(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, noteIntent())

	if err := os.WriteFile(s.docPath("30_topics/v2-test/notes.md"), []byte("손으로 고침"), 0o644); err != nil {
		t.Fatalf("failed to overwrite document: %v", err)
	}

	report, err := s.Validate(false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("committed-mode drift must not be an error: %v", report.Errors)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "manual-edit suspected") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a manual-edit warning, got %v", report.Warnings)
	}
}

func TestValidateResidueWarning(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.indexPath(FileRecords)+bakSuffix, nil, 0o644); err != nil {
		t.Fatalf("failed to plant residue: %v", err)
	}
	report, err := s.Validate(false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "residue") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a residue warning, got %v", report.Warnings)
	}
}

func TestValidateFullFlagsBackref(t *testing.T) {
	s := newTestStore(t)

	// Record A under its own topic.
	a := noteIntent()
	a.SourceRef = "30_topics/v7-target/notes.md"
	a.Record.ScopeID = "v7-target"
	createdA := mustWrite(t, s, a)

	// Record B whose summary cites A.
	b := noteIntent()
	b.SourceRef = "30_topics/v7-source/notes.md"
	b.Record.ScopeID = "v7-source"
	b.Record.Summary = "참고: " + createdA.RecordID
	createdB := mustWrite(t, s, b)

	mustWrite(t, s, &models.Intent{
		Action:            models.ActionDeprecate,
		RecordID:          createdA.RecordID,
		ReplacedBy:        models.ReplacedObsolete,
		DeprecationReason: "테스트",
	})

	report, err := s.Validate(true)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(report.Backrefs) != 1 {
		t.Fatalf("expected 1 backref, got %v", report.Backrefs)
	}
	ref := report.Backrefs[0]
	if ref.ActiveID != createdB.RecordID || ref.DeprecatedID != createdA.RecordID || ref.Field != "summary" {
		t.Errorf("unexpected backref: %+v", ref)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, createdB.RecordID) && strings.Contains(w, createdA.RecordID) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings must name the referencing pair, got %v", report.Warnings)
	}
}

func TestValidateRecordCountWarning(t *testing.T) {
	s := newTestStore(t)

	// Lower the policy threshold instead of writing a hundred records.
	policy := models.DefaultPolicy()
	policy.MaxRecordsWarn = 1
	data, err := policy.Format()
	if err != nil {
		t.Fatalf("failed to format policy: %v", err)
	}
	if err := os.WriteFile(s.policyPath(), data, 0o644); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	mustWrite(t, s, noteIntent())
	second := noteIntent()
	second.SourceRef = "30_topics/v2-test/more.md"
	mustWrite(t, s, second)

	report, err := s.Validate(false)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "record count") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a growth warning, got %v", report.Warnings)
	}
}
