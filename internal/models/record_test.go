package models

import (
	"strings"
	"testing"
)

func validRecord() *Record {
	return &Record{
		RecordID:    "rec_topic_v2-test_20260805_0001",
		ScopeType:   ScopeTopic,
		ScopeID:     "v2-test",
		Type:        TypeNote,
		Title:       "V2 검증 노트",
		Summary:     "BWT V2 체크리스트 검증",
		Tags:        []string{"domain/memory", "intent/debug"},
		SourceType:  SourceCandidate,
		SourceRef:   "30_topics/v2-test/notes.md",
		Status:      StatusActive,
		UpdatedAt:   "2026-08-05T12:00:00.000Z",
		ContentHash: "sha256:" + strings.Repeat("ab", 32),
	}
}

func TestRecordValid(t *testing.T) {
	if problems := validRecord().Problems(); len(problems) != 0 {
		t.Errorf("valid record reported problems: %v", problems)
	}
}

func TestRecordProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
		want   string
	}{
		{"empty id", func(r *Record) { r.RecordID = "" }, "recordId"},
		{"bad scope type", func(r *Record) { r.ScopeType = "team" }, "scopeType"},
		{"bad scope id", func(r *Record) { r.ScopeID = "Not A Slug" }, "scopeId"},
		{"bad type", func(r *Record) { r.Type = "memo" }, "type"},
		{"empty title", func(r *Record) { r.Title = "" }, "title"},
		{"bad source type", func(r *Record) { r.SourceType = "guess" }, "sourceType"},
		{"bad status", func(r *Record) { r.Status = "paused" }, "status"},
		{"bad tag axis", func(r *Record) { r.Tags = []string{"color/red"} }, "tags"},
		{"tag without value", func(r *Record) { r.Tags = []string{"domain/"} }, "tags"},
		{"bad timestamp", func(r *Record) { r.UpdatedAt = "2026-08-05" }, "updatedAt"},
		{"bad hash", func(r *Record) { r.ContentHash = "md5:abc" }, "contentHash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)
			problems := r.Problems()
			if len(problems) == 0 {
				t.Fatal("expected a problem")
			}
			found := false
			for _, p := range problems {
				if strings.HasPrefix(p, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a %q problem, got %v", tt.want, problems)
			}
		})
	}
}

func TestDeprecatedRequiresReplacedBy(t *testing.T) {
	r := validRecord()
	r.Status = StatusDeprecated
	problems := r.Problems()
	if len(problems) != 1 || !strings.HasPrefix(problems[0], "replacedBy") {
		t.Errorf("expected replacedBy problem, got %v", problems)
	}

	obsolete := ReplacedObsolete
	r.ReplacedBy = &obsolete
	problems = r.Problems()
	if len(problems) != 1 || !strings.HasPrefix(problems[0], "deprecationReason") {
		t.Errorf("expected deprecationReason problem, got %v", problems)
	}

	reason := "대체됨"
	r.DeprecationReason = &reason
	if problems := r.Problems(); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestScopeAbbrev(t *testing.T) {
	for scope, want := range map[ScopeType]string{
		ScopeProject: "proj",
		ScopeAgent:   "agent",
		ScopeUser:    "user",
		ScopeTopic:   "topic",
	} {
		if got := scope.Abbrev(); got != want {
			t.Errorf("%s: got %q, want %q", scope, got, want)
		}
	}
	if ScopeType("team").Abbrev() != "" {
		t.Error("unknown scope must have no abbreviation")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := validRecord()
	c := r.Clone()
	c.Tags[0] = "domain/other"
	if r.Tags[0] != "domain/memory" {
		t.Error("clone shares the tags slice")
	}
}
