package analysis

import (
	"math"
	"slices"
	"sort"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

const (
	strongCorroboration   = 4
	moderateCorroboration = 2

	strongBonus   = 1.15
	moderateBonus = 1.05

	maxScore = 100
)

// ScoreCondition computes how well the extracted symptoms fit c.
func ScoreCondition(extracted []string, c knowledge.Condition) ConditionScore {
	m := weigh(extracted, c)
	score := int(math.Round(corroborate(m.raw(), len(m.matched))))

	return ConditionScore{
		ConditionID:       c.ID,
		ConditionName:     c.Name,
		Score:             score,
		Severity:          Tier(score),
		MatchCount:        len(m.matched),
		TotalSymptoms:     len(c.Symptoms),
		MatchedSymptoms:   m.matched,
		UnmatchedSymptoms: m.unmatched,
		IsEmergency:       c.Emergency,
		ConditionSeverity: c.Severity,
		Prevention:        slices.Clone(c.Prevention),
		Recommendations:   slices.Clone(c.Recommendations),
	}
}

type match struct {
	matched       []string
	unmatched     []string
	matchedWeight int
	totalWeight   int
}

func weigh(extracted []string, c knowledge.Condition) match {
	present := make(map[string]bool, len(extracted))
	for _, s := range extracted {
		present[s] = true
	}

	m := match{
		matched:   make([]string, 0, len(c.Symptoms)),
		unmatched: make([]string, 0, len(c.Symptoms)),
	}
	for _, symptom := range c.Symptoms {
		w := c.Weight(symptom)
		m.totalWeight += w
		if present[symptom] {
			m.matchedWeight += w
			m.matched = append(m.matched, symptom)
		} else {
			m.unmatched = append(m.unmatched, symptom)
		}
	}
	return m
}

// raw is the matched share of the profile weight as a percentage.
func (m match) raw() float64 {
	if m.totalWeight == 0 {
		return 0
	}
	return float64(m.matchedWeight) / float64(m.totalWeight) * 100
}

// corroborate rewards several independent matches and caps the result at 100.
func corroborate(raw float64, matches int) float64 {
	switch {
	case matches >= strongCorroboration:
		raw *= strongBonus
	case matches >= moderateCorroboration:
		raw *= moderateBonus
	}
	return math.Min(raw, maxScore)
}

// Tier buckets a 0-100 score. Boundary values belong to the lower tier.
func Tier(score int) knowledge.Severity {
	switch {
	case score <= 25:
		return knowledge.SeverityLow
	case score <= 50:
		return knowledge.SeverityModerate
	case score <= 75:
		return knowledge.SeverityHigh
	default:
		return knowledge.SeverityCritical
	}
}

// ScoreAll scores every condition in catalog order.
func ScoreAll(extracted []string, conditions []knowledge.Condition) []ConditionScore {
	scores := make([]ConditionScore, 0, len(conditions))
	for _, c := range conditions {
		scores = append(scores, ScoreCondition(extracted, c))
	}
	return scores
}

// Rank keeps conditions with at least one matched symptom and orders them by
// score, highest first. Ties keep catalog order.
func Rank(scores []ConditionScore) []ConditionScore {
	ranked := make([]ConditionScore, 0, len(scores))
	for _, s := range scores {
		if s.MatchCount > 0 {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
