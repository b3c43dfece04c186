package jsonldb

import (
	"testing"
	"time"
)

func TestMintRecordIDFirstOfDay(t *testing.T) {
	today := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)
	id := MintRecordID("topic", "v2-test", nil, today)
	if id != "rec_topic_v2-test_20260805_0001" {
		t.Errorf("unexpected first id: %s", id)
	}
}

func TestMintRecordIDIncrements(t *testing.T) {
	today := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)
	existing := []string{
		"rec_topic_v2-test_20260805_0001",
		"rec_topic_v2-test_20260805_0007",
		"rec_topic_other_20260805_0042",   // different scope id
		"rec_proj_v2-test_20260805_0099",  // different scope type
		"rec_topic_v2-test_20260804_0031", // different day
	}
	id := MintRecordID("topic", "v2-test", existing, today)
	if id != "rec_topic_v2-test_20260805_0008" {
		t.Errorf("unexpected minted id: %s", id)
	}
}

func TestMintRecordIDUsesUTCDate(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	// Local 2026-08-06 03:00 is still 2026-08-05 in UTC.
	local := time.Date(2026, 8, 6, 3, 0, 0, 0, kst)
	id := MintRecordID("user", "me", nil, local)
	if id != "rec_user_me_20260805_0001" {
		t.Errorf("date must be taken in UTC, got %s", id)
	}
}
