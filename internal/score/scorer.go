// Package score computes the tiered participation bonus and the final
// grade for each consolidated record.
package score

import (
	"math"

	"github.com/pmezentsev/mergebook/internal/model"
)

// tierRange is a participation-count bucket mapping to a bonus range.
// A fixed-width range (Min == Max) skips the self-mean weighting.
type tierRange struct {
	Min float64
	Max float64
}

// tiers maps the completed-test count (capped at maxTierCount) to a
// bonus range. Counts of 0 and 1 earn no tiered bonus at all.
var tiers = map[int]tierRange{
	2: {Min: 70, Max: 75},
	3: {Min: 80, Max: 80},
	4: {Min: 85, Max: 93},
	5: {Min: 85, Max: 93},
	6: {Min: 85, Max: 93},
}

const maxTierCount = 6

// Scorer applies the two-layer bonus/grading computation. Layer A
// rewards performance among tests actually attempted; layer B penalizes
// absenteeism against the full expected source count by zero-filling,
// and can override layer A entirely. The two layers are intentionally
// independent.
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a scorer with the configured thresholds
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreAll finalizes every record in the consolidation. Each record is
// mutated exactly once.
func (s *Scorer) ScoreAll(cons *model.Consolidation) {
	for _, identity := range cons.Order {
		s.scoreRecord(cons.Records[identity], cons.SourceIDs)
	}
}

func (s *Scorer) scoreRecord(rec *model.ConsolidatedRecord, sourceIDs []string) {
	breakdown := &model.ScoreBreakdown{}

	// Layer A: tiered bonus over tests actually attempted. A score must
	// be present and above zero to count as completed.
	var completedSum float64
	for _, sourceID := range sourceIDs {
		score := rec.Scores[sourceID]
		if score.Missing() {
			breakdown.MissingCount++
			continue
		}
		if score.Value > 0 {
			breakdown.Completed++
			completedSum += score.Value
		}
	}

	if breakdown.Completed >= 2 {
		capped := breakdown.Completed
		if capped > maxTierCount {
			capped = maxTierCount
		}
		tier := tiers[capped]
		breakdown.TierMin = tier.Min
		breakdown.TierMax = tier.Max
		breakdown.SelfMean = completedSum / float64(breakdown.Completed)

		bonus := tier.Min
		if tier.Max > tier.Min {
			breakdown.Bucket = percentileBucket(breakdown.SelfMean)
			bonus = roundTo1(tier.Min + (tier.Max-tier.Min)*breakdown.Bucket)
		}
		breakdown.TieredBonus = &bonus
	}

	// Layer B: final assembly over the full configured source list,
	// missing counted as zero.
	var total float64
	for _, sourceID := range sourceIDs {
		total += rec.Scores[sourceID].OrZero()
	}

	assignment := 0.0
	if breakdown.TieredBonus != nil {
		assignment = *breakdown.TieredBonus
	}
	if breakdown.MissingCount >= s.cfg.FlatAssignmentThreshold {
		assignment = s.cfg.FlatAssignmentScore
		breakdown.FlatOverride = true
	}

	rec.AssignmentScore = assignment
	rec.FinalAverage = roundTo2((total + assignment) / float64(len(sourceIDs)+1))
	if rec.FinalAverage >= s.cfg.PassThreshold {
		rec.Status = model.StatusPass
	} else {
		rec.Status = model.StatusFail
	}
	rec.Breakdown = breakdown
}

// percentileBucket maps the participant's own completed-score mean to a
// position inside the tier range via fixed breakpoints.
func percentileBucket(mean float64) float64 {
	switch {
	case mean >= 85:
		return 0.9
	case mean >= 75:
		return 0.7
	case mean >= 65:
		return 0.5
	case mean >= 55:
		return 0.3
	default:
		return 0.1
	}
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
