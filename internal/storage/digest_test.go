package storage

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/agentbrain/brain/internal/models"
)

func digestRecords() []models.Record {
	return []models.Record{
		{
			RecordID: "rec_user_jane_20260801_0001",
			Title:    "사용자 프로필",
			Summary:  "선호 언어와 작업 습관",
			Tags:     []string{"domain/personal", "intent/profile"},
			Status:   models.StatusActive,
		},
		{
			RecordID: "rec_proj_alpha_20260802_0001",
			Title:    "API 설계 결정",
			Summary:  "REST API 엔드포인트 구조 결정",
			Tags:     []string{"domain/infra", "intent/decision"},
			Status:   models.StatusActive,
		},
		{
			// Separator and newline in free text degrade, the row stays parseable.
			RecordID: "rec_topic_notes_20260803_0001",
			Title:    "옛 노트 | 정리",
			Summary:  "폐기된\n메모",
			Status:   models.StatusDeprecated,
		},
	}
}

func TestProjectDigestGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "digest_projection", []byte(ProjectDigest(digestRecords())))
}

func TestDigestRoundTrip(t *testing.T) {
	records := digestRecords()
	lines, err := ParseDigest(ProjectDigest(records))
	if err != nil {
		t.Fatalf("failed to parse projection: %v", err)
	}
	if len(lines) != len(records) {
		t.Fatalf("expected %d lines, got %d", len(records), len(lines))
	}
	for i, line := range lines {
		if line.RecordID != records[i].RecordID {
			t.Errorf("line %d: id %s != %s", i, line.RecordID, records[i].RecordID)
		}
		if line.Status != records[i].Status {
			t.Errorf("line %d: status %s != %s", i, line.Status, records[i].Status)
		}
	}
	if lines[0].Tags[0] != "domain/personal" || lines[0].Tags[1] != "intent/profile" {
		t.Errorf("tags not preserved: %v", lines[0].Tags)
	}
	if lines[2].Tags != nil {
		t.Errorf("empty tags must parse as nil, got %v", lines[2].Tags)
	}
	if lines[2].Title != "옛 노트 / 정리" {
		t.Errorf("separator must degrade to /: %q", lines[2].Title)
	}
	if lines[2].Summary != "폐기된 메모" {
		t.Errorf("newline must flatten to a space: %q", lines[2].Summary)
	}
}

func TestProjectDigestDeterministic(t *testing.T) {
	a := ProjectDigest(digestRecords())
	b := ProjectDigest(digestRecords())
	if a != b {
		t.Error("projection must be deterministic")
	}
}

func TestParseDigestBadLine(t *testing.T) {
	if _, err := ParseDigest(digestHeader + "only | three | fields\n"); err == nil {
		t.Error("expected error for a short line")
	}
}

func TestParseDigestSkipsHeaderAndBlank(t *testing.T) {
	lines, err := ParseDigest("# header\n\nrec_x | t | s | domain/a | active\n\n")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(lines))
	}
}
