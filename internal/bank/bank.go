package bank

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// weightTolerance is the allowed deviation of a dimension's weight sum from 1.0.
const weightTolerance = 1e-9

// ErrConfiguration is matched by every ConfigError via errors.Is.
var ErrConfiguration = errors.New("configuration inconsistency")

// ConfigError reports a broken question bank or rule table. These are data
// errors caught at load time, never per-request user errors.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration inconsistency: %s", strings.Join(e.Problems, "; "))
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Bank is an immutable, validated question set.
type Bank struct {
	version   string
	questions []Question
	byID      map[string]int
	byDim     map[Dimension][]int
}

// New validates questions and builds a Bank. The slice is copied, so later
// changes by the caller do not affect the bank.
func New(version string, questions []Question) (*Bank, error) {
	if err := Validate(questions); err != nil {
		return nil, err
	}

	b := &Bank{
		version:   version,
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
		byDim:     make(map[Dimension][]int, len(Dimensions)),
	}
	copy(b.questions, questions)
	for i, q := range b.questions {
		b.byID[q.ID] = i
		b.byDim[q.Dimension] = append(b.byDim[q.Dimension], i)
	}
	return b, nil
}

// Validate checks the structural invariants of a question set:
// unique non-empty ids, known dimensions and answer types, positive
// weights, a remediation template per question, and per-dimension weight
// closure to 1.0. All problems are collected into one ConfigError.
func Validate(questions []Question) error {
	var problems []string
	seen := make(map[string]bool, len(questions))
	sums := make(map[Dimension]float64, len(Dimensions))
	counts := make(map[Dimension]int, len(Dimensions))

	for i, q := range questions {
		if strings.TrimSpace(q.ID) == "" {
			problems = append(problems, fmt.Sprintf("question #%d has an empty id", i))
			continue
		}
		if seen[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question id %q", q.ID))
			continue
		}
		seen[q.ID] = true

		if !q.Dimension.Valid() {
			problems = append(problems, fmt.Sprintf("question %q has unknown dimension %q", q.ID, q.Dimension))
			continue
		}
		if !q.AnswerType.Valid() {
			problems = append(problems, fmt.Sprintf("question %q has unknown answer type %q", q.ID, q.AnswerType))
		}
		if q.Weight <= 0 {
			problems = append(problems, fmt.Sprintf("question %q has non-positive weight %v", q.ID, q.Weight))
		}
		if strings.TrimSpace(q.Remediation) == "" {
			problems = append(problems, fmt.Sprintf("question %q has no remediation template", q.ID))
		}
		sums[q.Dimension] += q.Weight
		counts[q.Dimension]++
	}

	for _, d := range Dimensions {
		if counts[d] == 0 {
			problems = append(problems, fmt.Sprintf("dimension %q has no questions", d))
			continue
		}
		if math.Abs(sums[d]-1.0) > weightTolerance {
			problems = append(problems, fmt.Sprintf("dimension %q weights sum to %.6f, want 1.0", d, sums[d]))
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// Version returns the bank version label.
func (b *Bank) Version() string { return b.version }

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Questions returns a copy of all questions in bank order.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// ByDimension returns the questions of d in bank order.
func (b *Bank) ByDimension(d Dimension) []Question {
	idx := b.byDim[d]
	out := make([]Question, len(idx))
	for i, j := range idx {
		out[i] = b.questions[j]
	}
	return out
}

// IDs returns all question ids sorted ascending.
func (b *Bank) IDs() []string {
	ids := make([]string, 0, len(b.questions))
	for _, q := range b.questions {
		ids = append(ids, q.ID)
	}
	sort.Strings(ids)
	return ids
}
