// Package merge unions per-source record maps into one consolidated
// record set keyed by identity.
package merge

import (
	"github.com/pmezentsev/mergebook/internal/model"
)

// Engine performs the full outer join across sources. The merge is a
// single ordered pass: source order determines display-name precedence
// and must never be parallelized.
type Engine struct{}

// NewEngine creates a merge engine
func NewEngine() *Engine {
	return &Engine{}
}

// Merge unions the given sources into one Consolidation. Every identity
// seen in any source appears in the output; the first source to mention
// an identity supplies its display name, later differing names are kept
// as conflicts. Violation of the identity-count invariant is the one
// fatal condition and returns a DataLossError.
func (e *Engine) Merge(sources []*model.Source) (*model.Consolidation, error) {
	sourceIDs := make([]string, 0, len(sources))
	for _, src := range sources {
		sourceIDs = append(sourceIDs, src.ID)
	}

	cons := &model.Consolidation{
		SourceIDs: sourceIDs,
		Records:   make(map[string]*model.ConsolidatedRecord),
	}

	for _, src := range sources {
		for _, identity := range src.Order {
			rec := src.Records[identity]

			existing, ok := cons.Records[identity]
			if !ok {
				cons.Records[identity] = newRecord(rec, sourceIDs, src.ID)
				cons.Order = append(cons.Order, identity)
				continue
			}

			// Fill only this source's slot; earlier sources own theirs.
			if existing.Scores[src.ID].Missing() {
				existing.Scores[src.ID] = rec.Score
			}

			switch {
			case existing.DisplayName == "":
				existing.DisplayName = rec.DisplayName
			case rec.DisplayName != "" && rec.DisplayName != existing.DisplayName:
				cons.NameConflicts = append(cons.NameConflicts, model.NameConflict{
					Identity: identity,
					Kept:     existing.DisplayName,
					Seen:     rec.DisplayName,
					SourceID: src.ID,
				})
			}
		}
	}

	if err := checkInvariant(sources, cons); err != nil {
		return nil, err
	}

	return cons, nil
}

// newRecord creates a consolidated record with one slot per configured
// source, all missing except the originating one.
func newRecord(rec model.SourceRecord, sourceIDs []string, originID string) *model.ConsolidatedRecord {
	scores := make(map[string]model.Score, len(sourceIDs))
	for _, id := range sourceIDs {
		scores[id] = model.MissingScore()
	}
	scores[originID] = rec.Score

	return &model.ConsolidatedRecord{
		Identity:    rec.Identity,
		DisplayName: rec.DisplayName,
		Scores:      scores,
	}
}

// checkInvariant verifies |consolidated| == |union of source identities|
func checkInvariant(sources []*model.Source, cons *model.Consolidation) error {
	union := make(map[string]struct{})
	for _, src := range sources {
		for identity := range src.Records {
			union[identity] = struct{}{}
		}
	}

	if len(cons.Records) == len(union) {
		return nil
	}

	var missing []string
	for identity := range union {
		if _, ok := cons.Records[identity]; !ok {
			missing = append(missing, identity)
		}
	}

	return &model.DataLossError{
		Expected: len(union),
		Got:      len(cons.Records),
		Missing:  missing,
	}
}

// UnionCount returns the size of the union of all per-source identity
// sets; the validator uses it for independent accounting.
func UnionCount(sources []*model.Source) int {
	union := make(map[string]struct{})
	for _, src := range sources {
		for identity := range src.Records {
			union[identity] = struct{}{}
		}
	}
	return len(union)
}
