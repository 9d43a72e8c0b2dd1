package trend

import "math"

const (
	// DefaultStabilityTolerance is the variance below which a subject is stable.
	DefaultStabilityTolerance = 25
	// DefaultStabilityWindow is both the minimum history and the number of
	// most recent runs the variance is computed over.
	DefaultStabilityWindow = 3
)

// StabilityStatus is the run-level classification.
type StabilityStatus string

const (
	StatusProvisional StabilityStatus = "provisional"
	StatusStable      StabilityStatus = "stable"
)

// StabilityResult is the verdict over a subject's recent completed runs.
// Variance is nil when there is not enough history.
type StabilityResult struct {
	IsStable bool     `json:"is_stable"`
	Variance *float64 `json:"variance"`
}

// Status maps the verdict onto the run's stability status.
func (r StabilityResult) Status() StabilityStatus {
	if r.IsStable {
		return StatusStable
	}
	return StatusProvisional
}

// Stability classifies the ordered overall scores of all completed runs
// (oldest first, including the run just computed). With fewer than minRuns
// scores the result is never stable and carries no variance. Otherwise the
// population variance of the last minRuns scores, rounded to 2 decimals,
// must be below tolerance. Non-positive arguments use the defaults.
func Stability(scores []float64, tolerance float64, minRuns int) StabilityResult {
	if tolerance <= 0 {
		tolerance = DefaultStabilityTolerance
	}
	if minRuns <= 0 {
		minRuns = DefaultStabilityWindow
	}
	if len(scores) < minRuns {
		return StabilityResult{}
	}

	window := scores[len(scores)-minRuns:]
	v := round2(variance(window))
	return StabilityResult{IsStable: v < tolerance, Variance: &v}
}

// variance is the population variance: mean squared deviation from the mean.
func variance(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	sq := 0.0
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return sq / float64(len(xs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
