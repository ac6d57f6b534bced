package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pmezentsev/mergebook/internal/model"
)

// Renderer writes the consolidated gradebook and validation report to
// the supported output formats. Binary/visual styling belongs to
// downstream exporters, not here.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// exportDoc is the full JSON export shape
type exportDoc struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Sources     []string                    `json:"sources"`
	Records     []*model.ConsolidatedRecord `json:"records"`
	Validation  *model.ValidationReport     `json:"validation"`
	Skipped     []SkippedSource             `json:"skipped,omitempty"`
}

// RenderJSON writes the complete run result as JSON
func (r *Renderer) RenderJSON(result *RunResult, path string) error {
	doc := exportDoc{
		GeneratedAt: time.Now().UTC(),
		Sources:     result.Consolidation.SourceIDs,
		Records:     result.Consolidation.Ordered(),
		Validation:  result.Report,
		Skipped:     result.Skipped,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderCSV writes the gradebook rows as CSV. Missing scores render as
// empty cells, never as zeros.
func (r *Renderer) RenderCSV(result *RunResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	cons := result.Consolidation

	header := append([]string{"Name", "Email"}, cons.SourceIDs...)
	header = append(header, "Assignment", "Final", "Status")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, rec := range cons.Ordered() {
		row := []string{rec.DisplayName, rec.Identity}
		for _, sourceID := range cons.SourceIDs {
			row = append(row, formatScore(rec.Scores[sourceID]))
		}
		row = append(row,
			strconv.FormatFloat(rec.AssignmentScore, 'f', 1, 64),
			strconv.FormatFloat(rec.FinalAverage, 'f', 2, 64),
			string(rec.Status),
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable summary report
func (r *Renderer) RenderMarkdown(result *RunResult, path string) error {
	var b strings.Builder
	cons := result.Consolidation
	report := result.Report

	b.WriteString("# Consolidated Results\n\n")
	fmt.Fprintf(&b, "- Sources: %s\n", strings.Join(cons.SourceIDs, ", "))
	fmt.Fprintf(&b, "- Participants: %d\n", len(cons.Records))
	fmt.Fprintf(&b, "- Identities in sources: %d, consolidated: %d (loss: %.1f%%)\n\n",
		report.Stats.SourceIdentityCount, report.Stats.ConsolidatedIdentityCount, report.Stats.DataLossPercent)

	b.WriteString("| Name | Email |")
	for _, id := range cons.SourceIDs {
		fmt.Fprintf(&b, " %s |", id)
	}
	b.WriteString(" Assignment | Final | Status |\n")

	b.WriteString("|---|---|")
	for range cons.SourceIDs {
		b.WriteString("---|")
	}
	b.WriteString("---|---|---|\n")

	for _, rec := range cons.Ordered() {
		fmt.Fprintf(&b, "| %s | %s |", rec.DisplayName, rec.Identity)
		for _, sourceID := range cons.SourceIDs {
			score := rec.Scores[sourceID]
			if score.Missing() {
				b.WriteString(" - |")
			} else {
				fmt.Fprintf(&b, " %.1f |", score.Value)
			}
		}
		fmt.Fprintf(&b, " %.1f | %.2f | %s |\n", rec.AssignmentScore, rec.FinalAverage, rec.Status)
	}

	if report.IssueCount() > 0 {
		b.WriteString("\n## Validation\n\n")
		for _, issue := range report.Errors {
			fmt.Fprintf(&b, "- **ERROR** [%s] %s\n", issue.Check, issue.Message)
		}
		for _, issue := range report.Warnings {
			fmt.Fprintf(&b, "- **WARN** [%s] %s\n", issue.Check, issue.Message)
		}
		for _, issue := range report.Info {
			fmt.Fprintf(&b, "- INFO [%s] %s\n", issue.Check, issue.Message)
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\nGenerated by mergebook on %s\n", time.Now().UTC().Format(time.RFC3339))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write Markdown: %w", err)
	}
	return nil
}

// RenderSummary prints the run summary to stderr
func (r *Renderer) RenderSummary(result *RunResult) {
	cons := result.Consolidation
	report := result.Report

	passed, failed := 0, 0
	for _, rec := range cons.Records {
		switch rec.Status {
		case model.StatusPass:
			passed++
		case model.StatusFail:
			failed++
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Sources:      %d", len(cons.SourceIDs))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, " (%d skipped)", len(result.Skipped))
	}
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Participants: %d\n", len(cons.Records))
	fmt.Fprintf(os.Stderr, "  Passed:       %d\n", passed)
	fmt.Fprintf(os.Stderr, "  Failed:       %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Findings:     %d errors, %d warnings, %d info\n",
		len(report.Errors), len(report.Warnings), len(report.Info))
	fmt.Fprintf(os.Stderr, "\n")
}

func formatScore(s model.Score) string {
	if s.Missing() {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}
