// Package summary composes the tiered executive narrative for an assessment:
// headline, posture statement, primary drivers, priorities, and confidence
// and trend notes.
//
// Every sentence comes from a fixed template table; nothing is generated.
// Ties between equal dimension scores break by canonical dimension order so
// the same input always produces the same narrative.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/HendryAvila/trustlens/internal/bank"
)

// Module is the assessment type the summary is written for.
type Module string

const (
	ModuleOrganisation Module = "organisation"
	ModuleSystem       Module = "system"
)

// Valid reports whether m is a known module.
func (m Module) Valid() bool {
	_, ok := subjectNouns[m]
	return ok
}

// Status is response-count adequacy, not score-variance stability.
type Status string

const (
	StatusInsufficientData Status = "insufficient_data"
	StatusProvisional      Status = "provisional"
	StatusStable           Status = "stable"
)

// Tier is the qualitative band of the overall score.
type Tier string

const (
	TierTrusted      Tier = "trusted"
	TierStable       Tier = "stable"
	TierElevatedRisk Tier = "elevated_risk"
	TierCritical     Tier = "critical"
)

// Severity classifies one dimension score.
type Severity string

const (
	SeverityStrength Severity = "strength"
	SeverityWatch    Severity = "watch"
	SeverityWeak     Severity = "weak"
)

// Posture is the overall stance derived from risk controls and explainability.
type Posture string

const (
	PostureProactive  Posture = "proactive"
	PostureReactive   Posture = "reactive"
	PostureDeveloping Posture = "developing"
)

// trendFloor is the smallest movement the trend note reports.
const trendFloor = 3

// Input is everything the composer reads.
type Input struct {
	Module             Module                     `json:"module"`
	OverallScore       float64                    `json:"overall_score"`
	ResponseCount      int                        `json:"response_count"`
	MinResponses       int                        `json:"min_responses"`
	Dimensions         map[bank.Dimension]float64 `json:"dimensions"`
	PreviousOverall    *float64                   `json:"previous_overall,omitempty"`
	PreviousDimensions map[bank.Dimension]float64 `json:"previous_dimensions,omitempty"`
}

// Driver is one dimension called out as moving the result.
type Driver struct {
	Dimension bank.Dimension `json:"dimension"`
	Label     string         `json:"label"`
	Score     float64        `json:"score"`
	Severity  Severity       `json:"severity"`
	Why       string         `json:"why"`
}

// Priority is one of the two lowest dimensions, expanded into an action.
type Priority struct {
	Dimension bank.Dimension `json:"dimension"`
	Label     string         `json:"label"`
	Score     float64        `json:"score"`
	Title     string         `json:"title"`
	Rationale string         `json:"rationale"`
	Probes    []string       `json:"probes"`
}

// Output is the composed executive summary.
type Output struct {
	Module         Module                      `json:"module"`
	Status         Status                      `json:"status"`
	Tier           Tier                        `json:"tier"`
	Headline       string                      `json:"headline"`
	Posture        Posture                     `json:"posture"`
	PostureText    string                      `json:"posture_text"`
	Severities     map[bank.Dimension]Severity `json:"severities"`
	PrimaryDrivers []Driver                    `json:"primary_drivers"`
	Priorities     []Priority                  `json:"priorities"`
	ConfidenceNote string                      `json:"confidence_note"`
	TrendNote      string                      `json:"trend_note,omitempty"`
}

// StatusFor classifies response-count adequacy.
func StatusFor(responses, minResponses int) Status {
	switch {
	case responses < minResponses:
		return StatusInsufficientData
	case responses < 2*minResponses:
		return StatusProvisional
	default:
		return StatusStable
	}
}

// TierFor maps an overall score onto its tier.
func TierFor(score float64) Tier {
	switch {
	case score >= 80:
		return TierTrusted
	case score >= 65:
		return TierStable
	case score >= 50:
		return TierElevatedRisk
	default:
		return TierCritical
	}
}

// SeverityFor classifies one dimension score.
func SeverityFor(score float64) Severity {
	switch {
	case score >= 75:
		return SeverityStrength
	case score >= 60:
		return SeverityWatch
	default:
		return SeverityWeak
	}
}

// PostureFor derives the posture from the risk controls and explainability
// scores.
func PostureFor(risk, explainability float64) Posture {
	switch {
	case risk >= 75 && explainability >= 75:
		return PostureProactive
	case risk < 60 && explainability < 60:
		return PostureReactive
	default:
		return PostureDeveloping
	}
}

// Build composes the summary. It fails only on malformed input: an unknown
// module or a missing dimension score.
func Build(in Input) (Output, error) {
	if !in.Module.Valid() {
		return Output{}, fmt.Errorf("invalid module %q: must be organisation or system", in.Module)
	}
	for _, d := range bank.Dimensions {
		if _, ok := in.Dimensions[d]; !ok {
			return Output{}, fmt.Errorf("missing score for dimension %q", d)
		}
	}

	ranked := rank(in.Dimensions)

	out := Output{
		Module:     in.Module,
		Status:     StatusFor(in.ResponseCount, in.MinResponses),
		Tier:       TierFor(in.OverallScore),
		Severities: make(map[bank.Dimension]Severity, len(ranked)),
	}
	for _, s := range ranked {
		out.Severities[s.dim] = s.severity
	}

	out.PrimaryDrivers = primaryDrivers(ranked)
	out.Priorities = priorities(ranked)
	out.Headline = headline(in.Module, out.Tier, out.Status, out.PrimaryDrivers, ranked)
	out.Posture = PostureFor(in.Dimensions[bank.RiskControls], in.Dimensions[bank.Explainability])
	out.PostureText = postureSentences[out.Posture]
	out.ConfidenceNote = fmt.Sprintf(confidenceTemplates[out.Status],
		in.ResponseCount, in.MinResponses, 2*in.MinResponses)

	if in.PreviousOverall != nil {
		out.TrendNote = trendNote(in.OverallScore, *in.PreviousOverall, in.Dimensions, in.PreviousDimensions)
	}
	return out, nil
}

// --- Ranking ---

type scored struct {
	dim      bank.Dimension
	score    float64
	severity Severity
}

// rank orders dimensions ascending by score; ties keep canonical order.
func rank(dims map[bank.Dimension]float64) []scored {
	out := make([]scored, 0, len(bank.Dimensions))
	for _, d := range bank.Dimensions {
		out = append(out, scored{dim: d, score: dims[d], severity: SeverityFor(dims[d])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score < out[j].score })
	return out
}

func driverFor(s scored) Driver {
	return Driver{
		Dimension: s.dim,
		Label:     s.dim.Label(),
		Score:     s.score,
		Severity:  s.severity,
		Why:       whyNarratives[s.dim][s.severity],
	}
}

// primaryDrivers picks up to two of the weakest weak-or-watch dimensions,
// then exactly one more: the best strength not yet picked, else the best
// watch not yet picked, else the best remaining dimension.
func primaryDrivers(ranked []scored) []Driver {
	picked := make(map[bank.Dimension]bool, 3)
	var drivers []Driver

	for _, s := range ranked {
		if len(drivers) == 2 {
			break
		}
		if s.severity == SeverityStrength {
			continue
		}
		drivers = append(drivers, driverFor(s))
		picked[s.dim] = true
	}

	// Walk from the top so the first match is the highest score; among
	// equal scores the canonically earlier dimension wins.
	best := func(match func(scored) bool) (scored, bool) {
		found := false
		var pick scored
		for i := len(ranked) - 1; i >= 0; i-- {
			s := ranked[i]
			if picked[s.dim] || !match(s) {
				continue
			}
			if !found || s.score >= pick.score {
				pick, found = s, true
			}
		}
		return pick, found
	}

	if s, ok := best(func(s scored) bool { return s.severity == SeverityStrength }); ok {
		return append(drivers, driverFor(s))
	}
	if s, ok := best(func(s scored) bool { return s.severity == SeverityWatch }); ok {
		return append(drivers, driverFor(s))
	}
	if s, ok := best(func(scored) bool { return true }); ok {
		return append(drivers, driverFor(s))
	}
	return drivers
}

// priorities expands the two lowest-scoring dimensions.
func priorities(ranked []scored) []Priority {
	n := 2
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]Priority, 0, n)
	for _, s := range ranked[:n] {
		tpl := priorityTemplates[s.dim]
		probes := make([]string, len(tpl.Probes))
		copy(probes, tpl.Probes)
		out = append(out, Priority{
			Dimension: s.dim,
			Label:     s.dim.Label(),
			Score:     s.score,
			Title:     tpl.Title,
			Rationale: tpl.Rationale,
			Probes:    probes,
		})
	}
	return out
}

// --- Narrative ---

func headline(m Module, tier Tier, status Status, drivers []Driver, ranked []scored) string {
	weakest := ranked[0].dim.Label()
	if len(drivers) > 0 && drivers[0].Severity != SeverityStrength {
		weakest = drivers[0].Label
	}
	strongest := ranked[len(ranked)-1].dim.Label()
	if len(drivers) > 0 {
		strongest = drivers[len(drivers)-1].Label
	}

	text := strings.NewReplacer(
		"{subject}", subjectNouns[m],
		"{weakest}", weakest,
		"{strongest}", strongest,
	).Replace(headlineTemplates[tier][status])

	if status == StatusInsufficientData {
		return earlySignalPrefix + text
	}
	return text
}

func trendNote(current, previous float64, dims, prevDims map[bank.Dimension]float64) string {
	delta := current - previous
	if math.Abs(delta) < trendFloor {
		return "Stable"
	}

	direction := "Improved"
	if delta < 0 {
		direction = "Declined"
	}
	note := fmt.Sprintf("%s by %s points since the previous assessment", direction, points(math.Abs(delta)))

	var (
		moved    bank.Dimension
		movement float64
	)
	for _, d := range bank.Dimensions {
		prev, ok := prevDims[d]
		if !ok {
			continue
		}
		if m := dims[d] - prev; math.Abs(m) > math.Abs(movement) {
			moved, movement = d, m
		}
	}
	if moved != "" && math.Abs(movement) >= trendFloor {
		way := "up"
		if movement < 0 {
			way = "down"
		}
		note += fmt.Sprintf("; largest movement in %s (%s %s)", moved.Label(), way, points(math.Abs(movement)))
	}
	return note + "."
}

// points renders a score difference without a trailing .0.
func points(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
