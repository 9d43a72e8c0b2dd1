package risk

import (
	"fmt"

	"github.com/HendryAvila/trustlens/internal/bank"
)

// Kind selects how a rule reads the normalized answers.
type Kind string

const (
	// KindAnyBelow fires when any question in Dimensions scores below Floor
	// (Floor on the 0–1 question scale).
	KindAnyBelow Kind = "any_below"
	// KindDimensionBelow fires when every listed dimension scores below
	// Floor (Floor on the 0–100 dimension scale).
	KindDimensionBelow Kind = "dimension_below"
	// KindAllBelow fires when every listed question scores below Floor
	// (Floor on the 0–1 question scale).
	KindAllBelow Kind = "all_below"
)

// Rule is one row of the declarative flag table.
type Rule struct {
	Code        string           `yaml:"code"`
	Label       string           `yaml:"label"`
	Description string           `yaml:"description"`
	Kind        Kind             `yaml:"kind"`
	Dimensions  []bank.Dimension `yaml:"dimensions,omitempty"`
	QuestionIDs []string         `yaml:"question_ids,omitempty"`
	Floor       float64          `yaml:"floor"`
}

// DefaultRules is the reference flag table for the reference bank.
func DefaultRules() []Rule {
	return []Rule{
		{
			Code:        "HUMAN_OVERSIGHT_GAP",
			Label:       "Human oversight gap",
			Description: "At least one human oversight control is absent, so automated outcomes can take effect without a person able to intervene.",
			Kind:        KindAnyBelow,
			Dimensions:  []bank.Dimension{bank.HumanOversight},
			Floor:       0.25,
		},
		{
			Code:        "RISK_CONTROL_GAP",
			Label:       "Missing risk control",
			Description: "At least one core risk control is absent, leaving a known class of harm unmitigated.",
			Kind:        KindAnyBelow,
			Dimensions:  []bank.Dimension{bank.RiskControls},
			Floor:       0.25,
		},
		{
			Code:        "OPAQUE_DECISIONING",
			Label:       "Opaque decisioning",
			Description: "Both transparency and explainability are weak, so neither users nor reviewers can see how outcomes are produced.",
			Kind:        KindDimensionBelow,
			Dimensions:  []bank.Dimension{bank.Transparency, bank.Explainability},
			Floor:       40,
		},
		{
			Code:        "NO_ACCOUNTABLE_OWNER",
			Label:       "No accountable owner",
			Description: "Systems have no named accountable owner, so nobody is answerable for their outcomes.",
			Kind:        KindAllBelow,
			QuestionIDs: []string{"AC-01"},
			Floor:       0.25,
		},
		{
			Code:        "UNMANAGED_INCIDENTS",
			Label:       "Unmanaged incidents",
			Description: "There is neither an AI incident response plan nor a defined escalation path, so failures would be handled ad hoc.",
			Kind:        KindAllBelow,
			QuestionIDs: []string{"RC-04", "HO-03"},
			Floor:       0.5,
		},
		{
			Code:        "UNOBSERVED_PRODUCTION",
			Label:       "Unobserved production behaviour",
			Description: "Production monitoring and audit logging are both immature, so degradation would go unnoticed and be hard to reconstruct.",
			Kind:        KindAllBelow,
			QuestionIDs: []string{"RC-03", "AC-04"},
			Floor:       0.5,
		},
	}
}

// validateRule checks one rule against the bank.
func validateRule(b *bank.Bank, r Rule) []string {
	var problems []string
	if r.Code == "" {
		problems = append(problems, "rule has an empty code")
	}
	if r.Label == "" {
		problems = append(problems, fmt.Sprintf("rule %q has no label", r.Code))
	}

	switch r.Kind {
	case KindAnyBelow, KindDimensionBelow:
		if len(r.Dimensions) == 0 {
			problems = append(problems, fmt.Sprintf("rule %q lists no dimensions", r.Code))
		}
		for _, d := range r.Dimensions {
			if !d.Valid() {
				problems = append(problems, fmt.Sprintf("rule %q references unknown dimension %q", r.Code, d))
			}
		}
	case KindAllBelow:
		if len(r.QuestionIDs) == 0 {
			problems = append(problems, fmt.Sprintf("rule %q lists no questions", r.Code))
		}
		for _, id := range r.QuestionIDs {
			if _, ok := b.Question(id); !ok {
				problems = append(problems, fmt.Sprintf("rule %q references unknown question %q", r.Code, id))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("rule %q has unknown kind %q", r.Code, r.Kind))
	}
	return problems
}
