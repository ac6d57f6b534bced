package model

import (
	"encoding/json"
	"testing"
)

func TestScore_JSONRoundTrip(t *testing.T) {
	rec := SourceRecord{
		Identity:    "a@x.com",
		DisplayName: "Alice",
		Score:       NewScore(0),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back SourceRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.Score.Missing() {
		t.Error("a literal zero must survive serialization as a present score")
	}
	if back.Score.Value != 0 {
		t.Errorf("expected 0, got %v", back.Score.Value)
	}
}

func TestScore_MissingMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(MissingScore())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}

	var back Score
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Missing() {
		t.Error("null must parse back into the missing sentinel")
	}
}

func TestConsolidation_Ordered(t *testing.T) {
	cons := &Consolidation{
		Records: map[string]*ConsolidatedRecord{
			"b@x.com": {Identity: "b@x.com"},
			"a@x.com": {Identity: "a@x.com"},
		},
		Order: []string{"b@x.com", "a@x.com"},
	}

	ordered := cons.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ordered))
	}
	if ordered[0].Identity != "b@x.com" || ordered[1].Identity != "a@x.com" {
		t.Error("Ordered must follow first-seen order, not map order")
	}
}
