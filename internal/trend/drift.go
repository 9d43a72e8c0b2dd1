// Package trend compares a run against earlier completed runs of the same
// subject: drift against the immediately preceding run, and variance-based
// stability across the most recent runs.
package trend

import (
	"math"

	"github.com/HendryAvila/trustlens/internal/bank"
)

// DefaultDriftThreshold is the absolute score change that counts as drift.
const DefaultDriftThreshold = 10

// Direction of a score change.
type Direction string

const (
	DirectionImproved Direction = "improved"
	DirectionDeclined Direction = "declined"
	DirectionNone     Direction = "none"
)

// Severity of a score change.
type Severity string

const (
	SeveritySignificant Severity = "significant"
	SeverityModerate    Severity = "moderate"
	SeverityNone        Severity = "none"
)

// DriftResult describes the change between two scores.
type DriftResult struct {
	HasDrift  bool      `json:"has_drift"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
	Severity  Severity  `json:"severity"`
}

// noDrift is what a subject without history reports.
var noDrift = DriftResult{Delta: 0, Direction: DirectionNone, Severity: SeverityNone}

// Drift compares current with previous. A nil previous means the subject
// has no earlier completed run and therefore no drift. A threshold ≤ 0
// uses DefaultDriftThreshold.
func Drift(current float64, previous *float64, threshold float64) DriftResult {
	if previous == nil {
		return noDrift
	}
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}

	delta := current - *previous
	abs := math.Abs(delta)

	res := DriftResult{
		HasDrift:  abs > threshold,
		Delta:     delta,
		Direction: DirectionNone,
		Severity:  SeverityNone,
	}
	switch {
	case delta > 0:
		res.Direction = DirectionImproved
	case delta < 0:
		res.Direction = DirectionDeclined
	}
	switch {
	case abs > 1.5*threshold:
		res.Severity = SeveritySignificant
	case abs > threshold:
		res.Severity = SeverityModerate
	}
	return res
}

// DimensionDrift applies Drift independently per dimension, only for
// dimensions present in both maps. A nil previous map yields an empty result.
func DimensionDrift(current, previous map[bank.Dimension]float64, threshold float64) map[bank.Dimension]DriftResult {
	out := make(map[bank.Dimension]DriftResult)
	if previous == nil {
		return out
	}
	for d, cur := range current {
		prev, ok := previous[d]
		if !ok {
			continue
		}
		out[d] = Drift(cur, &prev, threshold)
	}
	return out
}
