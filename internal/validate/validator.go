// Package validate runs post-merge integrity checks over the
// consolidated record set.
package validate

import (
	"fmt"
	"strings"

	"github.com/pmezentsev/mergebook/internal/merge"
	"github.com/pmezentsev/mergebook/internal/model"
)

// Validator runs five independent checks against the merge output.
// Only the data-loss check produces an error-severity issue; everything
// else is advisory and never causes data to be dropped or corrected.
type Validator struct{}

// New creates a validator
func New() *Validator {
	return &Validator{}
}

// Validate inspects pre/post-merge state and returns the full report
func (v *Validator) Validate(sources []*model.Source, cons *model.Consolidation) *model.ValidationReport {
	report := model.NewValidationReport()

	v.checkDataLoss(sources, cons, report)
	v.checkMissingParticipants(sources, cons, report)
	v.checkNameMismatches(sources, report)
	v.checkDuplicateScores(cons, report)
	v.checkStructure(cons, report)
	v.reportLoadStats(sources, report)

	return report
}

// checkDataLoss verifies the identity-count invariant. This is the one
// fatal condition.
func (v *Validator) checkDataLoss(sources []*model.Source, cons *model.Consolidation, report *model.ValidationReport) {
	unionCount := merge.UnionCount(sources)
	consolidated := len(cons.Records)

	report.Stats.SourceIdentityCount = unionCount
	report.Stats.ConsolidatedIdentityCount = consolidated
	if unionCount > 0 {
		report.Stats.DataLossPercent = float64(unionCount-consolidated) / float64(unionCount) * 100
	}

	if consolidated == unionCount {
		return
	}

	report.AddError(model.CheckDataLoss,
		fmt.Sprintf("consolidated %d identities but sources contain %d", consolidated, unionCount),
		map[string]interface{}{
			"source_identities":       unionCount,
			"consolidated_identities": consolidated,
			"lost":                    unionCount - consolidated,
		})
}

// checkMissingParticipants flags identities absent from some sources.
// Expected for legitimate absences, hence only a warning.
func (v *Validator) checkMissingParticipants(sources []*model.Source, cons *model.Consolidation, report *model.ValidationReport) {
	for _, identity := range cons.Order {
		var absent []string
		for _, src := range sources {
			if _, ok := src.Records[identity]; !ok {
				absent = append(absent, src.ID)
			}
		}
		if len(absent) == 0 || len(absent) == len(sources) {
			continue
		}
		report.AddWarning(model.CheckMissingParticipant,
			fmt.Sprintf("%s is absent from %s", identity, strings.Join(absent, ", ")),
			map[string]interface{}{
				"identity":      identity,
				"absent_from":   absent,
				"present_in":    len(sources) - len(absent),
				"total_sources": len(sources),
			})
	}
}

// checkNameMismatches flags identities whose display name differs
// across sources, compared case-insensitively.
func (v *Validator) checkNameMismatches(sources []*model.Source, report *model.ValidationReport) {
	names := make(map[string][]string) // identity -> distinct names in source order
	seen := make(map[string]map[string]struct{})

	for _, src := range sources {
		for _, identity := range src.Order {
			name := src.Records[identity].DisplayName
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if seen[identity] == nil {
				seen[identity] = make(map[string]struct{})
			}
			if _, ok := seen[identity][key]; ok {
				continue
			}
			seen[identity][key] = struct{}{}
			names[identity] = append(names[identity], name)
		}
	}

	for identity, variants := range names {
		if len(variants) < 2 {
			continue
		}
		report.AddWarning(model.CheckNameMismatch,
			fmt.Sprintf("%s has %d different display names; keeping %q", identity, len(variants), variants[0]),
			map[string]interface{}{
				"identity": identity,
				"names":    variants,
				"kept":     variants[0],
			})
	}
}

// checkDuplicateScores flags identities with an identical numeric score
// in every source where they appear (at least two). Possibly
// copy-pasted data; flagged, never auto-corrected.
func (v *Validator) checkDuplicateScores(cons *model.Consolidation, report *model.ValidationReport) {
	for _, identity := range cons.Order {
		rec := cons.Records[identity]

		var present []float64
		for _, sourceID := range cons.SourceIDs {
			if score := rec.Scores[sourceID]; !score.Missing() {
				present = append(present, score.Value)
			}
		}
		if len(present) < 2 {
			continue
		}

		identical := true
		for _, v := range present[1:] {
			if v != present[0] {
				identical = false
				break
			}
		}
		if !identical {
			continue
		}

		report.AddWarning(model.CheckDuplicateScore,
			fmt.Sprintf("%s scored %.1f in all %d sources where present", identity, present[0], len(present)),
			map[string]interface{}{
				"identity":    identity,
				"score":       present[0],
				"occurrences": len(present),
			})
	}
}

// checkStructure confirms every consolidated record exposes exactly one
// score slot per configured source.
func (v *Validator) checkStructure(cons *model.Consolidation, report *model.ValidationReport) {
	for _, identity := range cons.Order {
		rec := cons.Records[identity]
		if len(rec.Scores) == len(cons.SourceIDs) && hasAllSlots(rec, cons.SourceIDs) {
			continue
		}
		report.AddWarning(model.CheckStructural,
			fmt.Sprintf("%s has %d score slots, expected %d", identity, len(rec.Scores), len(cons.SourceIDs)),
			map[string]interface{}{
				"identity":       identity,
				"slots":          len(rec.Scores),
				"expected_slots": len(cons.SourceIDs),
			})
	}
}

func hasAllSlots(rec *model.ConsolidatedRecord, sourceIDs []string) bool {
	for _, id := range sourceIDs {
		if _, ok := rec.Scores[id]; !ok {
			return false
		}
	}
	return true
}

// reportLoadStats surfaces per-source row accounting as info entries
func (v *Validator) reportLoadStats(sources []*model.Source, report *model.ValidationReport) {
	for _, src := range sources {
		if src.Stats.InvalidIdentity == 0 && src.Stats.DuplicateRows == 0 && src.Stats.MissingScores == 0 {
			continue
		}
		report.AddInfo(model.CheckLoad,
			fmt.Sprintf("%s: %d rows loaded, %d invalid identities dropped, %d duplicates ignored, %d missing scores",
				src.ID, src.Stats.Loaded, src.Stats.InvalidIdentity, src.Stats.DuplicateRows, src.Stats.MissingScores),
			map[string]interface{}{
				"source":           src.ID,
				"rows_seen":        src.Stats.RowsSeen,
				"loaded":           src.Stats.Loaded,
				"invalid_identity": src.Stats.InvalidIdentity,
				"duplicate_rows":   src.Stats.DuplicateRows,
				"missing_scores":   src.Stats.MissingScores,
			})
	}
}
