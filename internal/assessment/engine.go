package assessment

import (
	"fmt"
	"sort"
	"time"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/lifecycle"
	"github.com/HendryAvila/trustlens/internal/recommend"
	"github.com/HendryAvila/trustlens/internal/risk"
	"github.com/HendryAvila/trustlens/internal/scoring"
	"github.com/HendryAvila/trustlens/internal/summary"
	"github.com/HendryAvila/trustlens/internal/trend"
)

// Engine binds a question bank and rule table to the trend settings.
// Zero thresholds fall back to the trend package defaults.
type Engine struct {
	Bank               *bank.Bank
	Rules              *risk.RuleSet
	DriftThreshold     float64
	StabilityTolerance float64
	StabilityWindow    int
}

// NewEngine validates rules against b and returns an engine with default
// trend settings.
func NewEngine(b *bank.Bank, rules []risk.Rule) (*Engine, error) {
	rs, err := risk.NewRuleSet(b, rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Bank:               b,
		Rules:              rs,
		DriftThreshold:     trend.DefaultDriftThreshold,
		StabilityTolerance: trend.DefaultStabilityTolerance,
		StabilityWindow:    trend.DefaultStabilityWindow,
	}, nil
}

// Evaluate derives every calculated field for answers given the subject's
// completed history (oldest first). Any failure aborts the whole
// evaluation; there are no partial outcomes.
func (e *Engine) Evaluate(answers bank.Answers, history []Run) (Outcome, error) {
	normalized, err := scoring.NormalizeAll(e.Bank, answers)
	if err != nil {
		return Outcome{}, err
	}

	result := scoring.Aggregate(e.Bank, normalized)
	recs, err := recommend.FromNormalized(e.Bank, normalized)
	if err != nil {
		return Outcome{}, err
	}

	completed := scoredRuns(history)
	out := Outcome{
		Overall:         result.Overall,
		Dimensions:      result.Dimensions,
		Flags:           e.Rules.EvaluateNormalized(normalized),
		Recommendations: recs,
		Drift:           trend.Drift(float64(result.Overall), nil, e.DriftThreshold),
		DimensionDrift:  map[bank.Dimension]trend.DriftResult{},
	}

	if n := len(completed); n > 0 {
		prev := completed[n-1]
		out.Drift = trend.Drift(float64(result.Overall), overallOf(prev), e.DriftThreshold)
		out.DimensionDrift = trend.DimensionDrift(result.DimensionScores(), dimensionsOf(prev.DimensionScores), e.DriftThreshold)
	}

	scores := make([]float64, 0, len(completed)+1)
	for _, r := range completed {
		scores = append(scores, float64(*r.OverallScore))
	}
	scores = append(scores, float64(result.Overall))
	out.Stability = trend.Stability(scores, e.StabilityTolerance, e.StabilityWindow)

	return out, nil
}

// Answer validates and applies answers to an in-progress run. Either every
// answer is applied or none is.
func (e *Engine) Answer(run *Run, answers bank.Answers) error {
	if run.Status != RunInProgress {
		return ErrRunCompleted
	}

	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		q, ok := e.Bank.Question(id)
		if !ok {
			return &scoring.InvalidAnswerError{QuestionID: id, Reason: "question is not in bank " + e.Bank.Version()}
		}
		if _, err := scoring.Normalize(q, answers[id]); err != nil {
			return err
		}
	}

	if run.Answers == nil {
		run.Answers = make(bank.Answers, len(answers))
	}
	for _, id := range ids {
		run.Answers[id] = answers[id]
	}
	return nil
}

// Complete evaluates an in-progress run against the runs before it and marks
// it completed. The run is untouched on error.
func (e *Engine) Complete(run *Run, history []Run) error {
	if run.Status != RunInProgress {
		return ErrRunCompleted
	}
	out, err := e.Evaluate(run.Answers, priorTo(*run, history))
	if err != nil {
		return err
	}

	e.apply(run, out)
	now := timeNow()
	run.Status = RunCompleted
	run.CompletedAt = &now
	return nil
}

// Recalculate replays a completed run against the current bank, rule table
// and history. Answers and the completion time are never changed; every
// derived field is replaced and administrator flags are carried over.
func (e *Engine) Recalculate(run *Run, history []Run) error {
	if run.Status != RunCompleted {
		return ErrRunNotCompleted
	}
	out, err := e.Evaluate(run.Answers, priorTo(*run, history))
	if err != nil {
		return err
	}
	e.apply(run, out)
	return nil
}

func (e *Engine) apply(run *Run, out Outcome) {
	overall := out.Overall
	drift := out.Drift

	run.BankVersion = e.Bank.Version()
	run.OverallScore = &overall
	run.DimensionScores = out.Dimensions
	run.RiskFlags = risk.Merge(out.Flags, run.RiskFlags)
	run.Recommendations = out.Recommendations
	run.Stability = out.Stability.Status()
	run.VarianceLast3 = out.Stability.Variance
	run.DriftFromPrevious = &drift
	run.DimensionDrift = out.DimensionDrift
}

// --- History ---

// scoredRuns keeps completed, scored runs ordered by version.
func scoredRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if r.Status == RunCompleted && r.OverallScore != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// priorTo returns the runs with a lower version than run.
func priorTo(run Run, history []Run) []Run {
	out := make([]Run, 0, len(history))
	for _, r := range history {
		if r.SubjectID == run.SubjectID && r.Version < run.Version {
			out = append(out, r)
		}
	}
	return out
}

// Previous returns the latest completed run before run, if any.
func Previous(run Run, history []Run) (Run, bool) {
	prior := scoredRuns(priorTo(run, history))
	if len(prior) == 0 {
		return Run{}, false
	}
	return prior[len(prior)-1], true
}

// NextVersion returns one more than the highest version in runs, or 1.
func NextVersion(runs []Run) int {
	v := 0
	for _, r := range runs {
		if r.Version > v {
			v = r.Version
		}
	}
	return v + 1
}

// LastCompletedAt returns when the subject last completed a run, or the
// zero time.
func LastCompletedAt(runs []Run) time.Time {
	var last time.Time
	for _, r := range runs {
		if r.Status == RunCompleted && r.CompletedAt != nil && r.CompletedAt.After(last) {
			last = *r.CompletedAt
		}
	}
	return last
}

// --- Lifecycle ---

// EffectiveState is the subject's presented state, with expiry applied.
func EffectiveState(s Subject, runs []Run) lifecycle.State {
	return lifecycle.Effective(s.State, LastCompletedAt(runs), s.ReassessmentFrequencyDays)
}

// Reassess opens the subject's next run at version+1. It also opens the
// first run of a subject that has not started. The move to in_progress is
// checked against the effective state, so an overdue subject reassesses
// from expired.
func Reassess(s Subject, runs []Run) (Run, error) {
	from := EffectiveState(s, runs)
	if err := lifecycle.Transition(from, lifecycle.InProgress); err != nil {
		return Run{}, fmt.Errorf("subject %s: %w", s.ID, err)
	}
	return Run{
		SubjectID: s.ID,
		Version:   NextVersion(runs),
		Status:    RunInProgress,
		Answers:   bank.Answers{},
		StartedAt: timeNow(),
	}, nil
}

// CompletionStates lists the subject states to walk through after run
// completes: completed, then stable when the variance check passed.
func CompletionStates(run Run) []lifecycle.State {
	if run.Stability == trend.StatusStable {
		return []lifecycle.State{lifecycle.Completed, lifecycle.Stable}
	}
	return []lifecycle.State{lifecycle.Completed}
}

// --- Summary ---

// SummaryInput assembles the composer input for a completed run. responses
// is the response count the adequacy status is judged on.
func SummaryInput(s Subject, run Run, history []Run, responses, minResponses int) (summary.Input, error) {
	if run.Status != RunCompleted || run.OverallScore == nil {
		return summary.Input{}, ErrRunNotCompleted
	}
	in := summary.Input{
		Module:        s.Kind,
		OverallScore:  float64(*run.OverallScore),
		ResponseCount: responses,
		MinResponses:  minResponses,
		Dimensions:    dimensionsOf(run.DimensionScores),
	}
	if prev, ok := Previous(run, history); ok {
		in.PreviousOverall = overallOf(prev)
		in.PreviousDimensions = dimensionsOf(prev.DimensionScores)
	}
	return in, nil
}
