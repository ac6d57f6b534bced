package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Score is the bounded numeric result for one participant in one source.
// Missing is a first-class state: a participant who skipped a round is
// never conflated with a participant who scored a literal zero.
type Score struct {
	Value float64
	Valid bool
}

// NewScore creates a present score with the given value.
func NewScore(v float64) Score {
	return Score{Value: v, Valid: true}
}

// MissingScore returns the explicit missing sentinel.
func MissingScore() Score {
	return Score{}
}

// Missing reports whether the score is absent.
func (s Score) Missing() bool {
	return !s.Valid
}

// OrZero returns the value, treating missing as zero. Only the final
// assembly pass is allowed to collapse missing to zero this way.
func (s Score) OrZero() float64 {
	if !s.Valid {
		return 0
	}
	return s.Value
}

// MarshalJSON renders a missing score as null, never as 0.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON parses null back into the missing sentinel.
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse score: %w", err)
	}
	*s = Score{Value: v, Valid: true}
	return nil
}

// SourceRecord is one participant's row in a single source, immutable
// once parsed.
type SourceRecord struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	Score       Score  `json:"score"`
}

// LoadStats counts what happened to the raw rows of one source. Dropped
// rows are never silently discarded; they end up here and in the
// validation report.
type LoadStats struct {
	RowsSeen         int `json:"rows_seen"`
	Loaded           int `json:"loaded"`
	InvalidIdentity  int `json:"invalid_identity"`
	DuplicateRows    int `json:"duplicate_rows"`
	MissingScores    int `json:"missing_scores"`
	OutOfRangeScores int `json:"out_of_range_scores,omitempty"`
}

// Source is one ingested spreadsheet: an identity-keyed record map plus
// the original row order. Never mutated after load.
type Source struct {
	ID      string                  `json:"id"`
	Order   []string                `json:"order"`
	Records map[string]SourceRecord `json:"records"`
	Stats   LoadStats               `json:"stats"`
}

// Status is the final pass/fail outcome for a consolidated record.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// ScoreBreakdown documents how the assignment score was computed, so
// every exported grade is explainable without re-running the engine.
type ScoreBreakdown struct {
	Completed    int      `json:"completed"`
	SelfMean     float64  `json:"self_mean"`
	Bucket       float64  `json:"bucket"`
	TierMin      float64  `json:"tier_min"`
	TierMax      float64  `json:"tier_max"`
	TieredBonus  *float64 `json:"tiered_bonus,omitempty"`
	MissingCount int      `json:"missing_count"`
	FlatOverride bool     `json:"flat_override"`
}

// ConsolidatedRecord is the per-identity aggregate spanning all sources.
// Created by the merge, written exactly once by the scorer.
type ConsolidatedRecord struct {
	Identity        string           `json:"identity"`
	DisplayName     string           `json:"display_name"`
	Scores          map[string]Score `json:"scores"`
	AssignmentScore float64          `json:"assignment_score"`
	FinalAverage    float64          `json:"final_average"`
	Status          Status           `json:"status,omitempty"`
	Breakdown       *ScoreBreakdown  `json:"breakdown,omitempty"`
}

// NameConflict records a display-name disagreement observed during the
// merge. The first-seen name is kept; the conflict is surfaced, never
// resolved silently.
type NameConflict struct {
	Identity string `json:"identity"`
	Kept     string `json:"kept"`
	Seen     string `json:"seen"`
	SourceID string `json:"source_id"`
}

// Consolidation is the merged record set for one pipeline run.
type Consolidation struct {
	SourceIDs     []string                       `json:"source_ids"`
	Records       map[string]*ConsolidatedRecord `json:"records"`
	Order         []string                       `json:"order"`
	NameConflicts []NameConflict                 `json:"name_conflicts,omitempty"`
}

// Ordered returns the consolidated records in first-seen order.
func (c *Consolidation) Ordered() []*ConsolidatedRecord {
	out := make([]*ConsolidatedRecord, 0, len(c.Order))
	for _, id := range c.Order {
		if rec, ok := c.Records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}
