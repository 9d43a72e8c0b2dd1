// Package recommend turns low-scoring answers into prioritized remediation
// items drawn from the bank's fixed per-question templates.
//
// Recommendations are ephemeral: every scoring pass regenerates the full
// list, nothing is merged with a prior set.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/scoring"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityMed  Priority = "med"
)

const (
	// Threshold is the score below which a question gets a recommendation.
	Threshold = 0.5
	// HighThreshold is the score below which the recommendation is high priority.
	HighThreshold = 0.25
)

// Recommendation is one remediation item.
type Recommendation struct {
	QuestionID     string         `json:"question_id"`
	Dimension      bank.Dimension `json:"dimension"`
	Control        string         `json:"control"`
	Priority       Priority       `json:"priority"`
	Recommendation string         `json:"recommendation"`
}

// Generate normalizes answers and emits recommendations.
func Generate(b *bank.Bank, answers bank.Answers) ([]Recommendation, error) {
	normalized, err := scoring.NormalizeAll(b, answers)
	if err != nil {
		return nil, err
	}
	return FromNormalized(b, normalized)
}

// FromNormalized emits one recommendation for every question scoring below
// Threshold, high before med, ascending question id within a tier.
func FromNormalized(b *bank.Bank, normalized map[string]float64) ([]Recommendation, error) {
	recs := make([]Recommendation, 0)
	for _, id := range b.IDs() {
		score := normalized[id]
		if score >= Threshold {
			continue
		}
		q, _ := b.Question(id)
		if strings.TrimSpace(q.Remediation) == "" {
			return nil, &bank.ConfigError{Problems: []string{fmt.Sprintf("question %q has no remediation template", id)}}
		}

		priority := PriorityMed
		if score < HighThreshold {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			QuestionID:     q.ID,
			Dimension:      q.Dimension,
			Control:        q.Control,
			Priority:       priority,
			Recommendation: q.Remediation,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority == PriorityHigh
		}
		return recs[i].QuestionID < recs[j].QuestionID
	})
	return recs, nil
}

// Count tallies recommendations per priority.
func Count(recs []Recommendation) (high, med int) {
	for _, r := range recs {
		if r.Priority == PriorityHigh {
			high++
		} else {
			med++
		}
	}
	return high, med
}
