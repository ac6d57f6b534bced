package validate

import (
	"testing"

	"github.com/pmezentsev/mergebook/internal/merge"
	"github.com/pmezentsev/mergebook/internal/model"
)

func makeSource(id string, records map[string]model.SourceRecord, order []string) *model.Source {
	return &model.Source{ID: id, Records: records, Order: order}
}

func makeRecord(identity, name string, score model.Score) model.SourceRecord {
	return model.SourceRecord{Identity: identity, DisplayName: name, Score: score}
}

func mergedFixture(t *testing.T, sources []*model.Source) *model.Consolidation {
	t.Helper()
	cons, err := merge.NewEngine().Merge(sources)
	if err != nil {
		t.Fatalf("merge fixture: %v", err)
	}
	return cons
}

func countByCheck(issues []model.Issue, check model.Check) int {
	n := 0
	for _, issue := range issues {
		if issue.Check == check {
			n++
		}
	}
	return n
}

func TestValidator_CleanMergePassesAllChecks(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice Smith", model.NewScore(85)),
			"b@x.com": makeRecord("b@x.com", "Bob Jones", model.NewScore(92)),
		}, []string{"a@x.com", "b@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice Smith", model.NewScore(90)),
			"b@x.com": makeRecord("b@x.com", "Bob Jones", model.NewScore(88)),
		}, []string{"a@x.com", "b@x.com"}),
	}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if report.HasErrors() {
		t.Fatalf("expected no errors, got %+v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", report.Warnings)
	}
	if report.Stats.SourceIdentityCount != 2 || report.Stats.ConsolidatedIdentityCount != 2 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
	if report.Stats.DataLossPercent != 0 {
		t.Errorf("expected 0%% data loss, got %v", report.Stats.DataLossPercent)
	}
}

func TestValidator_DataLossIsFatal(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(85)),
			"b@x.com": makeRecord("b@x.com", "Bob", model.NewScore(90)),
		}, []string{"a@x.com", "b@x.com"}),
	}
	cons := mergedFixture(t, sources)

	// Simulate a broken merge that silently lost an identity.
	delete(cons.Records, "b@x.com")

	report := New().Validate(sources, cons)

	if !report.HasErrors() {
		t.Fatal("expected a data-loss error")
	}
	if report.Errors[0].Check != model.CheckDataLoss {
		t.Errorf("expected data_loss check, got %s", report.Errors[0].Check)
	}
	if report.Stats.DataLossPercent != 50 {
		t.Errorf("expected 50%% data loss, got %v", report.Stats.DataLossPercent)
	}
}

func TestValidator_MissingParticipantWarning(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(85)),
			"b@x.com": makeRecord("b@x.com", "Bob", model.NewScore(90)),
		}, []string{"a@x.com", "b@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(80)),
		}, []string{"a@x.com"}),
	}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if report.HasErrors() {
		t.Fatalf("absence is not an error: %+v", report.Errors)
	}
	if n := countByCheck(report.Warnings, model.CheckMissingParticipant); n != 1 {
		t.Errorf("expected 1 missing-participant warning, got %d", n)
	}
	// The warning is advisory: bob stays in the consolidated set.
	if _, ok := cons.Records["b@x.com"]; !ok {
		t.Error("warned participant must not be dropped")
	}
}

func TestValidator_NameMismatchWarning(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice Smith", model.NewScore(85)),
		}, []string{"a@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alicia Smith", model.NewScore(80)),
		}, []string{"a@x.com"}),
		makeSource("Test 3", map[string]model.SourceRecord{
			// Case-only difference is not a mismatch.
			"a@x.com": makeRecord("a@x.com", "ALICE SMITH", model.NewScore(75)),
		}, []string{"a@x.com"}),
	}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if n := countByCheck(report.Warnings, model.CheckNameMismatch); n != 1 {
		t.Fatalf("expected 1 name-mismatch warning, got %d: %+v", n, report.Warnings)
	}
	if kept := report.Warnings[0].Data["kept"]; report.Warnings[0].Check == model.CheckNameMismatch && kept != "Alice Smith" {
		t.Errorf("expected first-seen name kept, got %v", kept)
	}
}

func TestValidator_DuplicateScoreWarning(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(77)),
			"b@x.com": makeRecord("b@x.com", "Bob", model.NewScore(60)),
		}, []string{"a@x.com", "b@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(77)),
			"b@x.com": makeRecord("b@x.com", "Bob", model.NewScore(65)),
		}, []string{"a@x.com", "b@x.com"}),
		makeSource("Test 3", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(77)),
		}, []string{"a@x.com"}),
	}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if n := countByCheck(report.Warnings, model.CheckDuplicateScore); n != 1 {
		t.Fatalf("expected 1 duplicate-score warning (alice only), got %d", n)
	}
	// Flagged, never corrected.
	if cons.Records["a@x.com"].Scores["Test 3"].Value != 77 {
		t.Error("duplicate scores must never be auto-corrected")
	}
}

func TestValidator_DuplicateScoreNeedsTwoOccurrences(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(77)),
		}, []string{"a@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{}, nil),
	}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if n := countByCheck(report.Warnings, model.CheckDuplicateScore); n != 0 {
		t.Errorf("a single occurrence is not a duplicate, got %d warnings", n)
	}
}

func TestValidator_StructuralCheck(t *testing.T) {
	sources := []*model.Source{
		makeSource("Test 1", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(85)),
		}, []string{"a@x.com"}),
		makeSource("Test 2", map[string]model.SourceRecord{
			"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(80)),
		}, []string{"a@x.com"}),
	}
	cons := mergedFixture(t, sources)

	// Break the schema: drop one score slot.
	delete(cons.Records["a@x.com"].Scores, "Test 2")

	report := New().Validate(sources, cons)

	if n := countByCheck(report.Warnings, model.CheckStructural); n != 1 {
		t.Errorf("expected 1 structural warning, got %d", n)
	}
}

func TestValidator_LoadStatsSurfacedAsInfo(t *testing.T) {
	src := makeSource("Test 1", map[string]model.SourceRecord{
		"a@x.com": makeRecord("a@x.com", "Alice", model.NewScore(85)),
	}, []string{"a@x.com"})
	src.Stats = model.LoadStats{RowsSeen: 4, Loaded: 1, InvalidIdentity: 2, DuplicateRows: 1}

	sources := []*model.Source{src}
	cons := mergedFixture(t, sources)

	report := New().Validate(sources, cons)

	if n := countByCheck(report.Info, model.CheckLoad); n != 1 {
		t.Errorf("expected 1 load info entry, got %d", n)
	}
}
