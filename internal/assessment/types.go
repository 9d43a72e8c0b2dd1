// Package assessment orchestrates one assessment run: it applies answers,
// runs the scoring, risk, recommendation and trend calculators against the
// subject's history, and guards lifecycle moves.
//
// The package is pure. Callers load subjects and runs, hand them in, and
// persist what comes back.
package assessment

import (
	"errors"
	"time"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/HendryAvila/trustlens/internal/recommend"
	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/HendryAvila/trustlens/internal/trend"
)

// RunStatus is the status of a single run.
type RunStatus string

const (
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
)

var (
	// ErrRunCompleted is returned when answers or completion target a run
	// that is already completed.
	ErrRunCompleted = errors.New("run already completed")
	// ErrRunNotCompleted is returned when recalculating a run that was never
	// completed.
	ErrRunNotCompleted = errors.New("run not completed")
)

// Subject is the organisation or AI system being assessed.
type Subject struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	Kind                      summary.Module  `json:"kind"`
	ReassessmentFrequencyDays *int            `json:"reassessment_frequency_days,omitempty"`
	State                     lifecycle.State `json:"state"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// Run is one versioned pass over the question bank. Everything below
// Answers is derived and is rewritten wholesale on completion or
// recalculation.
type Run struct {
	ID          string       `json:"id"`
	SubjectID   string       `json:"subject_id"`
	Version     int          `json:"version"`
	Status      RunStatus    `json:"status"`
	BankVersion string       `json:"bank_version"`
	Answers     bank.Answers `json:"answers"`

	OverallScore      *int                                `json:"overall_score,omitempty"`
	DimensionScores   map[bank.Dimension]int              `json:"dimension_scores,omitempty"`
	RiskFlags         []risk.Flag                         `json:"risk_flags"`
	Recommendations   []recommend.Recommendation          `json:"recommendations"`
	Stability         trend.StabilityStatus               `json:"stability_status,omitempty"`
	VarianceLast3     *float64                            `json:"variance_last_3,omitempty"`
	DriftFromPrevious *trend.DriftResult                  `json:"drift_from_previous,omitempty"`
	DimensionDrift    map[bank.Dimension]trend.DriftResult `json:"dimension_drift,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Outcome is everything Evaluate derives from one answer set.
type Outcome struct {
	Overall         int                                  `json:"overall_score"`
	Dimensions      map[bank.Dimension]int               `json:"dimension_scores"`
	Flags           []risk.Flag                          `json:"risk_flags"`
	Recommendations []recommend.Recommendation           `json:"recommendations"`
	Drift           trend.DriftResult                    `json:"drift"`
	DimensionDrift  map[bank.Dimension]trend.DriftResult `json:"dimension_drift"`
	Stability       trend.StabilityResult                `json:"stability"`
}

// overallOf returns a run's overall score as a float pointer for the trend
// calculators, nil when the run was never scored.
func overallOf(r Run) *float64 {
	if r.OverallScore == nil {
		return nil
	}
	v := float64(*r.OverallScore)
	return &v
}

// dimensionsOf converts integer dimension scores for the trend and summary
// calculators.
func dimensionsOf(scores map[bank.Dimension]int) map[bank.Dimension]float64 {
	if scores == nil {
		return nil
	}
	out := make(map[bank.Dimension]float64, len(scores))
	for d, s := range scores {
		out[d] = float64(s)
	}
	return out
}
