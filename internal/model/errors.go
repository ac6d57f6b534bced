package model

import (
	"fmt"
	"strings"
)

// ColumnDetectionError reports that a source's header row did not match
// all three required column categories. Source-level and recoverable:
// the caller's strategy decides whether to abort the run or skip the
// source.
type ColumnDetectionError struct {
	SourceID string
	Headers  []string
	Missing  []string // unmatched categories: identity, name, score
}

func (e *ColumnDetectionError) Error() string {
	return fmt.Sprintf("source %s: no header matched %s (headers: %s)",
		e.SourceID, strings.Join(e.Missing, ", "), strings.Join(e.Headers, " | "))
}

// DataLossError reports a violation of the merge invariant: the
// consolidated identity set no longer equals the union of all per-source
// identity sets. Pipeline-fatal; the run must abort rather than proceed
// with silently dropped participants.
type DataLossError struct {
	Expected int      // size of the union of source identities
	Got      int      // size of the consolidated set
	Missing  []string // identities present in sources but absent after merge
}

func (e *DataLossError) Error() string {
	return fmt.Sprintf("data loss: expected %d consolidated identities, got %d (%d lost)",
		e.Expected, e.Got, e.Expected-e.Got)
}

// InvalidIdentityError describes a row whose identity cell is not a
// usable email address. Row-level: such rows are dropped and counted,
// never escalated and never promoted to a synthetic identity.
type InvalidIdentityError struct {
	SourceID string
	Row      int // 1-based data row index
	Raw      string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("source %s row %d: invalid identity %q", e.SourceID, e.Row, e.Raw)
}

// SourceCountError reports that the number of usable sources fell
// outside the configured bounds.
type SourceCountError struct {
	Count int
	Min   int
	Max   int
}

func (e *SourceCountError) Error() string {
	if e.Count < e.Min {
		return fmt.Sprintf("need at least %d sources, have %d", e.Min, e.Count)
	}
	return fmt.Sprintf("at most %d sources allowed, have %d", e.Max, e.Count)
}
