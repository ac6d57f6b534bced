package detect

import (
	"errors"
	"testing"

	"github.com/pmezentsev/mergebook/internal/model"
)

func testColumnConfig() model.ColumnConfig {
	return model.DefaultConfig().Columns
}

func TestColumnMapper_Map_HumanAuthoredHeaders(t *testing.T) {
	mapper := NewColumnMapper(testColumnConfig())

	cols, err := mapper.Map("Test 1", []string{"Full Name", "Email Address", "Percentage"})
	if err != nil {
		t.Fatalf("expected detection to succeed, got %v", err)
	}

	if cols.Name != 0 {
		t.Errorf("expected name column 0, got %d", cols.Name)
	}
	if cols.Identity != 1 {
		t.Errorf("expected identity column 1, got %d", cols.Identity)
	}
	if cols.Score != 2 {
		t.Errorf("expected score column 2, got %d", cols.Score)
	}
	if cols.Matched[CategoryScore] != "Percentage" {
		t.Errorf("expected matched score header %q, got %q", "Percentage", cols.Matched[CategoryScore])
	}
}

func TestColumnMapper_Map_UnrecognizedHeaders(t *testing.T) {
	mapper := NewColumnMapper(testColumnConfig())

	_, err := mapper.Map("Test 1", []string{"Participant", "Contact", "Marks Obtained"})
	if err == nil {
		t.Fatal("expected a detection error for unrecognized headers")
	}

	var detectionErr *model.ColumnDetectionError
	if !errors.As(err, &detectionErr) {
		t.Fatalf("expected ColumnDetectionError, got %T", err)
	}
	// "Participant" matches the name category; identity and score have
	// no synonym and must both be reported.
	if len(detectionErr.Missing) != 2 {
		t.Fatalf("expected 2 missing categories, got %v", detectionErr.Missing)
	}
	for _, want := range []string{"identity", "score"} {
		found := false
		for _, got := range detectionErr.Missing {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in missing categories %v", want, detectionErr.Missing)
		}
	}
}

func TestColumnMapper_Map_FirstMatchWins(t *testing.T) {
	mapper := NewColumnMapper(testColumnConfig())

	// Two headers match the score category; the leftmost must win.
	cols, err := mapper.Map("Test 1", []string{"Email", "Name", "Score", "Result"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols.Score != 2 {
		t.Errorf("expected leftmost score column 2, got %d", cols.Score)
	}
}

func TestColumnMapper_Map_NormalizesHeaders(t *testing.T) {
	mapper := NewColumnMapper(testColumnConfig())

	cols, err := mapper.Map("Test 1", []string{"  NAME ", " E-MAIL", "SCORE  "})
	if err != nil {
		t.Fatalf("expected trimmed/lowercased headers to match, got %v", err)
	}
	if cols.Name != 0 || cols.Identity != 1 || cols.Score != 2 {
		t.Errorf("unexpected mapping: name=%d identity=%d score=%d", cols.Name, cols.Identity, cols.Score)
	}
}

func TestColumnMapper_Map_CustomSynonyms(t *testing.T) {
	cfg := model.ColumnConfig{
		NameSynonyms:  []string{"participant"},
		EmailSynonyms: []string{"contact"},
		ScoreSynonyms: []string{"marks obtained"},
	}
	mapper := NewColumnMapper(cfg)

	cols, err := mapper.Map("Test 1", []string{"Participant", "Contact", "Marks Obtained"})
	if err != nil {
		t.Fatalf("expected custom synonyms to match, got %v", err)
	}
	if cols.Name != 0 || cols.Identity != 1 || cols.Score != 2 {
		t.Errorf("unexpected mapping: name=%d identity=%d score=%d", cols.Name, cols.Identity, cols.Score)
	}
}
