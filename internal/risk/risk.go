// Package risk evaluates the fixed flag rule table over normalized answers
// and merges computed flags with administrator-applied ones.
package risk

import (
	"fmt"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/scoring"
)

// Source tells computed flags apart from administrator-applied ones.
type Source string

const (
	SourceComputed Source = "computed"
	SourceAdmin    Source = "admin"
)

// Flag is a named warning attached to a run.
type Flag struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Source      Source `json:"source"`
}

// RuleSet is a validated, immutable rule table bound to one bank.
type RuleSet struct {
	bank  *bank.Bank
	rules []Rule
}

// NewRuleSet validates rules against b. Unknown dimensions, unknown question
// ids, duplicate codes and empty selectors are configuration errors.
func NewRuleSet(b *bank.Bank, rules []Rule) (*RuleSet, error) {
	var problems []string
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Code] {
			problems = append(problems, fmt.Sprintf("duplicate rule code %q", r.Code))
		}
		seen[r.Code] = true
		problems = append(problems, validateRule(b, r)...)
	}
	if len(problems) > 0 {
		return nil, &bank.ConfigError{Problems: problems}
	}

	rs := &RuleSet{bank: b, rules: make([]Rule, len(rules))}
	copy(rs.rules, rules)
	return rs, nil
}

// Rules returns a copy of the table in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Evaluate normalizes answers and applies every rule.
func (rs *RuleSet) Evaluate(answers bank.Answers) ([]Flag, error) {
	normalized, err := scoring.NormalizeAll(rs.bank, answers)
	if err != nil {
		return nil, err
	}
	return rs.EvaluateNormalized(normalized), nil
}

// EvaluateNormalized applies every rule to already-normalized scores. Flags
// come out in table order, at most one per rule, all with source computed.
func (rs *RuleSet) EvaluateNormalized(normalized map[string]float64) []Flag {
	dims := scoring.Aggregate(rs.bank, normalized).Dimensions

	flags := make([]Flag, 0)
	for _, r := range rs.rules {
		if !rs.fires(r, normalized, dims) {
			continue
		}
		flags = append(flags, Flag{
			Code:        r.Code,
			Label:       r.Label,
			Description: r.Description,
			Source:      SourceComputed,
		})
	}
	return flags
}

func (rs *RuleSet) fires(r Rule, normalized map[string]float64, dims map[bank.Dimension]int) bool {
	switch r.Kind {
	case KindAnyBelow:
		for _, d := range r.Dimensions {
			for _, q := range rs.bank.ByDimension(d) {
				if normalized[q.ID] < r.Floor {
					return true
				}
			}
		}
		return false

	case KindDimensionBelow:
		for _, d := range r.Dimensions {
			if float64(dims[d]) >= r.Floor {
				return false
			}
		}
		return true

	case KindAllBelow:
		for _, id := range r.QuestionIDs {
			if normalized[id] >= r.Floor {
				return false
			}
		}
		return true
	}
	return false
}

// Merge replaces every computed flag with the freshly computed set and
// keeps all admin flags from previous verbatim, appended after the
// computed ones in their original order.
func Merge(computed, previous []Flag) []Flag {
	out := make([]Flag, 0, len(computed)+len(previous))
	for _, f := range computed {
		f.Source = SourceComputed
		out = append(out, f)
	}
	for _, f := range previous {
		if f.Source == SourceAdmin {
			out = append(out, f)
		}
	}
	return out
}

// AdminFlags filters flags down to the administrator-applied ones.
func AdminFlags(flags []Flag) []Flag {
	var out []Flag
	for _, f := range flags {
		if f.Source == SourceAdmin {
			out = append(out, f)
		}
	}
	return out
}
