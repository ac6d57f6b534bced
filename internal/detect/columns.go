// Package detect implements header column detection and score cell
// parsing for human-authored spreadsheet exports.
package detect

import (
	"strings"

	"github.com/pmezentsev/mergebook/internal/model"
)

// Category names one of the three semantic columns every source must
// provide.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryName     Category = "name"
	CategoryScore    Category = "score"
)

// categoryOrder fixes the precedence when one header appears in more
// than one synonym set: identity wins over name wins over score.
var categoryOrder = []Category{CategoryIdentity, CategoryName, CategoryScore}

// ColumnMap is the result of successful detection: a column index per
// category plus the header text that matched, for operator-facing
// output.
type ColumnMap struct {
	Identity int
	Name     int
	Score    int
	Matched  map[Category]string
}

// Index returns the detected column index for a category.
func (m ColumnMap) Index(c Category) int {
	switch c {
	case CategoryIdentity:
		return m.Identity
	case CategoryName:
		return m.Name
	default:
		return m.Score
	}
}

// ColumnMapper maps a header row to the three semantic columns using
// exact synonym matching. The first left-to-right header matching a
// category wins; ties between categories break on the fixed category
// order. No fuzzy matching: an ambiguous header may pick the wrong
// column within its category, but the mapper never guesses across
// categories.
type ColumnMapper struct {
	synonyms map[Category]map[string]struct{}
}

// NewColumnMapper builds a mapper from the configured synonym sets.
// Synonyms are normalized the same way headers are, so configuration
// casing never matters.
func NewColumnMapper(cfg model.ColumnConfig) *ColumnMapper {
	return &ColumnMapper{
		synonyms: map[Category]map[string]struct{}{
			CategoryIdentity: synonymSet(cfg.EmailSynonyms),
			CategoryName:     synonymSet(cfg.NameSynonyms),
			CategoryScore:    synonymSet(cfg.ScoreSynonyms),
		},
	}
}

// Map detects the three semantic columns in a header row. It returns a
// ColumnDetectionError listing every unmatched category when detection
// fails, so the operator can extend the synonym sets precisely.
func (m *ColumnMapper) Map(sourceID string, headers []string) (ColumnMap, error) {
	result := ColumnMap{
		Identity: -1,
		Name:     -1,
		Score:    -1,
		Matched:  make(map[Category]string, 3),
	}

	assigned := make(map[Category]int, 3)
	for idx, header := range headers {
		normalized := NormalizeHeader(header)
		for _, cat := range categoryOrder {
			if _, done := assigned[cat]; done {
				continue
			}
			if _, ok := m.synonyms[cat][normalized]; ok {
				assigned[cat] = idx
				result.Matched[cat] = header
				break
			}
		}
	}

	var missing []string
	for _, cat := range categoryOrder {
		idx, ok := assigned[cat]
		if !ok {
			missing = append(missing, string(cat))
			continue
		}
		switch cat {
		case CategoryIdentity:
			result.Identity = idx
		case CategoryName:
			result.Name = idx
		case CategoryScore:
			result.Score = idx
		}
	}

	if len(missing) > 0 {
		return ColumnMap{}, &model.ColumnDetectionError{
			SourceID: sourceID,
			Headers:  headers,
			Missing:  missing,
		}
	}

	return result, nil
}

// NormalizeHeader canonicalizes a header cell for matching
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func synonymSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[NormalizeHeader(v)] = struct{}{}
	}
	return set
}
