package loader

import (
	"errors"
	"testing"

	"github.com/pmezentsev/mergebook/internal/model"
	"github.com/pmezentsev/mergebook/internal/reader"
)

func testLoader() *Loader {
	return New(model.DefaultConfig().Columns)
}

func testTable(rows [][]string) *reader.Table {
	return &reader.Table{
		Name:    "round1.csv",
		Headers: []string{"Name", "Email", "Score"},
		Rows:    rows,
	}
}

func TestLoader_Load_NormalizesRows(t *testing.T) {
	src, err := testLoader().Load("Test 1", testTable([][]string{
		{"  alice SMITH ", " Alice@Example.COM ", "85"},
		{"bob jones", "bob@example.com", "92%"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Stats.Loaded != 2 {
		t.Fatalf("expected 2 loaded records, got %d", src.Stats.Loaded)
	}

	alice, ok := src.Records["alice@example.com"]
	if !ok {
		t.Fatal("expected identity to be trimmed and lowercased")
	}
	if alice.DisplayName != "Alice Smith" {
		t.Errorf("expected title-cased name, got %q", alice.DisplayName)
	}
	if alice.Score.Missing() || alice.Score.Value != 85 {
		t.Errorf("expected score 85, got %+v", alice.Score)
	}

	bob := src.Records["bob@example.com"]
	if bob.Score.Missing() || bob.Score.Value != 92 {
		t.Errorf("expected percent sign stripped, got %+v", bob.Score)
	}
}

func TestLoader_Load_DropsInvalidIdentities(t *testing.T) {
	src, err := testLoader().Load("Test 1", testTable([][]string{
		{"Alice", "alice@example.com", "85"},
		{"No At Sign", "example.com", "90"},
		{"No Dot", "bob@examplecom", "91"},
		{"Empty", "", "92"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Stats.InvalidIdentity != 3 {
		t.Errorf("expected 3 invalid identities counted, got %d", src.Stats.InvalidIdentity)
	}
	if src.Stats.Loaded != 1 {
		t.Errorf("expected 1 loaded record, got %d", src.Stats.Loaded)
	}
	if _, ok := src.Records["example.com"]; ok {
		t.Error("invalid identity must never be promoted to a record")
	}
}

func TestLoader_Load_FirstDuplicateWins(t *testing.T) {
	src, err := testLoader().Load("Test 1", testTable([][]string{
		{"Alice First", "alice@example.com", "85"},
		{"Alice Second", "ALICE@example.com", "40"},
		{"Alice Third", "alice@example.com ", "99"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Stats.DuplicateRows != 2 {
		t.Errorf("expected 2 duplicates counted, got %d", src.Stats.DuplicateRows)
	}

	rec := src.Records["alice@example.com"]
	if rec.DisplayName != "Alice First" {
		t.Errorf("expected first occurrence to win, got %q", rec.DisplayName)
	}
	if rec.Score.Value != 85 {
		t.Errorf("expected first score 85, got %v", rec.Score.Value)
	}
	if len(src.Order) != 1 {
		t.Errorf("expected 1 ordered identity, got %d", len(src.Order))
	}
}

func TestLoader_Load_CountsMissingScores(t *testing.T) {
	src, err := testLoader().Load("Test 1", testTable([][]string{
		{"Alice", "alice@example.com", ""},
		{"Bob", "bob@example.com", "absent"},
		{"Carol", "carol@example.com", "120"},
		{"Dave", "dave@example.com", "0"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.Stats.MissingScores != 3 {
		t.Errorf("expected 3 missing scores (empty, non-numeric, out of range), got %d", src.Stats.MissingScores)
	}
	if src.Records["dave@example.com"].Score.Missing() {
		t.Error("a literal zero must load as a present score")
	}
}

func TestLoader_Load_ColumnDetectionError(t *testing.T) {
	table := &reader.Table{
		Name:    "odd.csv",
		Headers: []string{"Participant", "Contact", "Marks Obtained"},
		Rows:    [][]string{{"Alice", "alice@example.com", "85"}},
	}

	_, err := testLoader().Load("Test 2", table)
	var detectionErr *model.ColumnDetectionError
	if !errors.As(err, &detectionErr) {
		t.Fatalf("expected ColumnDetectionError, got %v", err)
	}
	if detectionErr.SourceID != "Test 2" {
		t.Errorf("expected source id in error, got %q", detectionErr.SourceID)
	}
}

func TestLoader_Load_ShortRowsAreSafe(t *testing.T) {
	src, err := testLoader().Load("Test 1", testTable([][]string{
		{"Alice", "alice@example.com"}, // score column absent entirely
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Stats.Loaded != 1 {
		t.Fatalf("expected the short row to load, got %d", src.Stats.Loaded)
	}
	if !src.Records["alice@example.com"].Score.Missing() {
		t.Error("expected a missing score for a truncated row")
	}
}
