// Package bank holds the fixed, versioned question bank that every scoring
// pass is evaluated against.
//
// A Bank is built once (from the compiled-in reference set or a YAML file),
// validated at load time, and never mutated afterwards. Configuration
// mistakes such as weights that do not close to 1.0 surface here as a
// ConfigError instead of leaking into per-request scoring.
package bank

import "fmt"

// --- Dimension enum ---

// Dimension is one of the five fixed assessment categories.
type Dimension string

const (
	Transparency   Dimension = "transparency"
	Explainability Dimension = "explainability"
	HumanOversight Dimension = "human_oversight"
	RiskControls   Dimension = "risk_controls"
	Accountability Dimension = "accountability"
)

// Dimensions is the canonical dimension order. Anything that iterates over
// dimensions for output uses this order so results are reproducible.
var Dimensions = []Dimension{
	Transparency,
	Explainability,
	HumanOversight,
	RiskControls,
	Accountability,
}

var dimensionLabels = map[Dimension]string{
	Transparency:   "Transparency",
	Explainability: "Explainability",
	HumanOversight: "Human Oversight",
	RiskControls:   "Risk Controls",
	Accountability: "Accountability",
}

// Label returns the display label, or the raw key for unknown dimensions.
func (d Dimension) Label() string {
	if l, ok := dimensionLabels[d]; ok {
		return l
	}
	return string(d)
}

// Valid reports whether d is one of the five known dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionLabels[d]
	return ok
}

// DimensionIndex returns the canonical position of d, or -1.
func DimensionIndex(d Dimension) int {
	for i, x := range Dimensions {
		if x == d {
			return i
		}
	}
	return -1
}

// ParseDimension accepts either the key or the display label.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if s == string(d) || s == d.Label() {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid dimension %q: must be one of: transparency, explainability, human_oversight, risk_controls, accountability", s)
}

// --- Answer type enum ---

// AnswerType selects which Answer field a question expects.
type AnswerType string

const (
	AnswerMaturity AnswerType = "enum_maturity"
	AnswerBoolean  AnswerType = "boolean"
)

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	return t == AnswerMaturity || t == AnswerBoolean
}

// --- Maturity enum ---

// Maturity is the five-level practice maturity scale.
type Maturity string

const (
	MaturityNone      Maturity = "none"
	MaturityAdHoc     Maturity = "ad_hoc"
	MaturityDefined   Maturity = "defined"
	MaturityEnforced  Maturity = "enforced"
	MaturityAutomated Maturity = "automated"
)

// MaturityLevels lists the scale from lowest to highest.
var MaturityLevels = []Maturity{
	MaturityNone,
	MaturityAdHoc,
	MaturityDefined,
	MaturityEnforced,
	MaturityAutomated,
}

// Rank returns the 0-based position of m on the scale, or -1 if unknown.
func (m Maturity) Rank() int {
	for i, x := range MaturityLevels {
		if x == m {
			return i
		}
	}
	return -1
}

// --- Core records ---

// Question is one weighted item in the bank.
type Question struct {
	ID          string     `json:"id" yaml:"id"`
	Dimension   Dimension  `json:"dimension" yaml:"dimension"`
	Control     string     `json:"control" yaml:"control"`
	Prompt      string     `json:"prompt" yaml:"prompt"`
	AnswerType  AnswerType `json:"answer_type" yaml:"answer_type"`
	Weight      float64    `json:"weight" yaml:"weight"`
	Remediation string     `json:"remediation" yaml:"remediation"` // canonical recommendation text
}

// Evidence is audit metadata attached to an answer. It has no effect on
// the question's score.
type Evidence struct {
	Type    string `json:"type"`
	Pointer string `json:"pointer"`
	Note    string `json:"note,omitempty"`
}

// Answer is a respondent's answer to one question. Exactly one of Maturity
// or Boolean is populated, matching the question's AnswerType.
type Answer struct {
	Maturity *Maturity `json:"maturity,omitempty"`
	Boolean  *bool     `json:"boolean,omitempty"`
	Evidence *Evidence `json:"evidence,omitempty"`
}

// MaturityAnswer is a convenience constructor.
func MaturityAnswer(m Maturity) Answer {
	return Answer{Maturity: &m}
}

// BoolAnswer is a convenience constructor.
func BoolAnswer(b bool) Answer {
	return Answer{Boolean: &b}
}

// Answers maps question id to answer.
type Answers map[string]Answer
