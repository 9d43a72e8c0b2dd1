// Package scoring converts answers into per-question scores in [0,1] and
// aggregates them into weighted dimension scores and an overall score.
//
// Everything here is a pure function of the bank and the answer map:
// the same inputs always yield the same Result.
package scoring

import (
	"math"
	"sort"

	"github.com/HendryAvila/trustlens/internal/bank"
)

// maturityPoints places the five maturity levels at equal spacing on [0,1].
var maturityPoints = map[bank.Maturity]float64{
	bank.MaturityNone:      0,
	bank.MaturityAdHoc:     0.25,
	bank.MaturityDefined:   0.5,
	bank.MaturityEnforced:  0.75,
	bank.MaturityAutomated: 1.0,
}

// Result holds the aggregated scores of one scoring pass.
type Result struct {
	Dimensions map[bank.Dimension]int `json:"dimension_scores"`
	Overall    int                    `json:"overall_score"`
}

// Normalize maps one answer to its effective score in [0,1].
// Evidence is carried for audit only and never changes the score.
func Normalize(q bank.Question, a bank.Answer) (float64, error) {
	if a.Maturity != nil && a.Boolean != nil {
		return 0, &InvalidAnswerError{QuestionID: q.ID, Reason: "both maturity and boolean are set"}
	}

	switch q.AnswerType {
	case bank.AnswerBoolean:
		if a.Boolean == nil {
			return 0, &InvalidAnswerError{QuestionID: q.ID, Reason: "boolean question needs a boolean answer"}
		}
		if *a.Boolean {
			return 1, nil
		}
		return 0, nil

	case bank.AnswerMaturity:
		if a.Maturity == nil {
			return 0, &InvalidAnswerError{QuestionID: q.ID, Reason: "maturity question needs a maturity level"}
		}
		v, ok := maturityPoints[*a.Maturity]
		if !ok {
			return 0, &InvalidAnswerError{QuestionID: q.ID, Reason: "unknown maturity level " + string(*a.Maturity)}
		}
		return v, nil

	default:
		return 0, &InvalidAnswerError{QuestionID: q.ID, Reason: "question has unknown answer type " + string(q.AnswerType)}
	}
}

// CheckComplete returns an IncompleteAnswersError when any bank question is
// unanswered.
func CheckComplete(b *bank.Bank, answers bank.Answers) error {
	var missing []string
	for _, id := range b.IDs() {
		if _, ok := answers[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &IncompleteAnswersError{Missing: missing}
	}
	return nil
}

// NormalizeAll validates the full answer map against the bank and returns
// question id → score. Completeness is checked first, then shape; answers
// for ids outside the bank are rejected.
func NormalizeAll(b *bank.Bank, answers bank.Answers) (map[string]float64, error) {
	if err := CheckComplete(b, answers); err != nil {
		return nil, err
	}

	extra := make([]string, 0)
	for id := range answers {
		if _, ok := b.Question(id); !ok {
			extra = append(extra, id)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, &InvalidAnswerError{QuestionID: extra[0], Reason: "question is not in bank " + b.Version()}
	}

	scores := make(map[string]float64, b.Len())
	for _, id := range b.IDs() {
		q, _ := b.Question(id)
		v, err := Normalize(q, answers[id])
		if err != nil {
			return nil, err
		}
		scores[id] = v
	}
	return scores, nil
}

// Score computes dimension and overall scores for a complete answer map.
func Score(b *bank.Bank, answers bank.Answers) (Result, error) {
	normalized, err := NormalizeAll(b, answers)
	if err != nil {
		return Result{}, err
	}
	return Aggregate(b, normalized), nil
}

// Aggregate combines already-normalized question scores. Each dimension is
// Σ(score × weight) × 100, rounded and clamped to [0,100]; the overall score
// is the rounded, clamped mean of the dimension scores.
func Aggregate(b *bank.Bank, normalized map[string]float64) Result {
	dims := make(map[bank.Dimension]int, len(bank.Dimensions))
	total := 0
	for _, d := range bank.Dimensions {
		sum := 0.0
		for _, q := range b.ByDimension(d) {
			sum += normalized[q.ID] * q.Weight
		}
		dims[d] = roundClamp(sum * 100)
		total += dims[d]
	}
	return Result{
		Dimensions: dims,
		Overall:    roundClamp(float64(total) / float64(len(bank.Dimensions))),
	}
}

// DimensionScores returns the dimension scores as floats, the shape the
// drift detector takes.
func (r Result) DimensionScores() map[bank.Dimension]float64 {
	out := make(map[bank.Dimension]float64, len(r.Dimensions))
	for d, v := range r.Dimensions {
		out[d] = float64(v)
	}
	return out
}

// roundClamp rounds half away from zero after snapping v to 1e-6, so a
// weighted sum that is exactly x.5 on paper but 0.4999… in float64 still
// rounds up.
func roundClamp(v float64) int {
	n := int(math.Round(math.Round(v*1e6) / 1e6))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
