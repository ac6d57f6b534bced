// Package loader turns one spreadsheet table into an identity-keyed
// set of source records.
package loader

import (
	"strings"
	"unicode"

	"github.com/pmezentsev/mergebook/internal/detect"
	"github.com/pmezentsev/mergebook/internal/model"
	"github.com/pmezentsev/mergebook/internal/reader"
)

// Loader produces one Source per spreadsheet. Column detection runs
// once per table; every row then goes through identity normalization
// and score parsing. Rows are only ever dropped for an unusable
// identity, and every drop is counted.
type Loader struct {
	mapper *detect.ColumnMapper
}

// New creates a loader with the configured synonym sets
func New(cfg model.ColumnConfig) *Loader {
	return &Loader{mapper: detect.NewColumnMapper(cfg)}
}

// Load converts a table into a Source. Returns a ColumnDetectionError
// when the header row does not expose all three required columns; the
// caller's strategy decides whether that aborts the run.
func (l *Loader) Load(sourceID string, table *reader.Table) (*model.Source, error) {
	cols, err := l.mapper.Map(sourceID, table.Headers)
	if err != nil {
		return nil, err
	}

	src := &model.Source{
		ID:      sourceID,
		Records: make(map[string]model.SourceRecord, len(table.Rows)),
	}

	for _, row := range table.Rows {
		src.Stats.RowsSeen++

		identity, ok := NormalizeIdentity(cell(row, cols.Identity))
		if !ok {
			// Never promoted to a synthetic identity; dropped and counted.
			src.Stats.InvalidIdentity++
			continue
		}

		if _, exists := src.Records[identity]; exists {
			// First occurrence wins; later rows are duplicates, not merges.
			src.Stats.DuplicateRows++
			continue
		}

		score := detect.ParseScore(cell(row, cols.Score))
		if score.Missing() {
			src.Stats.MissingScores++
		}

		src.Records[identity] = model.SourceRecord{
			Identity:    identity,
			DisplayName: NormalizeDisplayName(cell(row, cols.Name)),
			Score:       score,
		}
		src.Order = append(src.Order, identity)
		src.Stats.Loaded++
	}

	return src, nil
}

// NormalizeIdentity canonicalizes an identity cell. The result must
// look like an email address (contain both "@" and ".") or the row is
// unusable.
func NormalizeIdentity(raw string) (string, bool) {
	identity := strings.ToLower(strings.TrimSpace(raw))
	if !strings.Contains(identity, "@") || !strings.Contains(identity, ".") {
		return "", false
	}
	return identity, true
}

// NormalizeDisplayName trims and title-cases a display name cell
func NormalizeDisplayName(raw string) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	for i, f := range fields {
		fields[i] = titleCase(f)
	}
	return strings.Join(fields, " ")
}

// titleCase uppercases the first rune and lowercases the rest
func titleCase(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// cell safely indexes a row, returning "" past the end
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
