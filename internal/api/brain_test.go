package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agentbrain/brain/internal/models"
)

func newTestBrain(t *testing.T) *Brain {
	t.Helper()
	b, err := Open(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := b.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return b
}

func createNote(t *testing.T, b *Brain) *models.WriteResponse {
	t.Helper()
	content := "# 회의\n오늘의 메모"
	resp := b.Write(&models.Intent{
		Action:    models.ActionCreate,
		SourceRef: "30_topics/meetings/today.md",
		Content:   &content,
		Record: &models.Draft{
			ScopeType:  models.ScopeTopic,
			ScopeID:    "meetings",
			Type:       models.TypeNote,
			Title:      "회의 메모",
			Summary:    "오늘 회의 내용",
			Tags:       []string{"domain/work", "intent/log"},
			SourceType: models.SourceChatLog,
		},
	})
	if !resp.Success {
		t.Fatalf("write failed: %+v", resp.Report)
	}
	return resp
}

func TestFacadeWriteQueryGet(t *testing.T) {
	b := newTestBrain(t)
	created := createNote(t, b)
	if created.Report.TxnID == "" {
		t.Error("report must carry a transaction id")
	}

	query, err := b.Query(&models.QueryRequest{Goal: "회의 메모"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if query.Total != 1 || query.Candidates[0].RecordID != created.RecordID {
		t.Errorf("query did not surface the record: %+v", query)
	}

	detail, err := b.Get(created.RecordID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if detail == nil || detail.Record.Title != "회의 메모" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if detail.Preview != "오늘의 메모" {
		t.Errorf("unexpected preview: %q", detail.Preview)
	}
}

func TestFacadeBootAndValidate(t *testing.T) {
	b := newTestBrain(t)
	createNote(t, b)

	boot, err := b.Boot(nil)
	if err != nil {
		t.Fatalf("boot failed: %v", err)
	}
	if len(boot.Mismatches) != 0 {
		t.Errorf("clean store reports drift: %v", boot.Mismatches)
	}

	report, err := b.Validate(true)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("validation errors on a clean store: %v", report.Errors)
	}
}

func TestFacadeDeleteGateUsesSession(t *testing.T) {
	b := newTestBrain(t)
	created := createNote(t, b)
	resp := b.Write(&models.Intent{
		Action:            models.ActionDeprecate,
		RecordID:          created.RecordID,
		ReplacedBy:        models.ReplacedObsolete,
		DeprecationReason: "정리",
	})
	if !resp.Success {
		t.Fatalf("deprecate failed: %+v", resp.Report)
	}

	// The deprecate happened inside this session, so the gate blocks.
	unmet, err := b.GateDelete(created.RecordID, nil, true)
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if len(unmet) == 0 {
		t.Error("same-session delete must be blocked")
	}

	// A simulated later session passes.
	later := time.Now().Add(time.Hour)
	unmet, err = b.GateDelete(created.RecordID, &later, true)
	if err != nil {
		t.Fatalf("gate failed: %v", err)
	}
	if len(unmet) != 0 {
		t.Errorf("later session must pass: %v", unmet)
	}
}

func TestFacadeContamination(t *testing.T) {
	b := newTestBrain(t)
	content := "# 규칙\n추론으로 만든 규칙"
	resp := b.Write(&models.Intent{
		Action:    models.ActionCreate,
		SourceRef: "30_topics/rules/inferred.md",
		Content:   &content,
		Record: &models.Draft{
			ScopeType:  models.ScopeTopic,
			ScopeID:    "rules",
			Type:       models.TypeRule,
			Title:      "추론 규칙",
			SourceType: models.SourceInference,
		},
	})
	if !resp.Success {
		t.Fatalf("write failed: %+v", resp.Report)
	}

	found, err := b.Contamination()
	if err != nil {
		t.Fatalf("contamination scan failed: %v", err)
	}
	if len(found) != 1 || found[0].RecordID != resp.RecordID {
		t.Errorf("expected the inferred rule flagged, got %v", found)
	}
}

func TestContractSchema(t *testing.T) {
	data, err := ContractSchema()
	if err != nil {
		t.Fatalf("schema export failed: %v", err)
	}
	var c map[string]json.RawMessage
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	for _, key := range []string{"intent", "writeResponse", "queryRequest", "queryResponse", "record"} {
		if _, ok := c[key]; !ok {
			t.Errorf("schema missing %s", key)
		}
	}
}
