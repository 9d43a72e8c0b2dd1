package trend

import (
	"testing"

	"github.com/HendryAvila/trustlens/internal/bank"
)

func ptr(v float64) *float64 { return &v }

// --- Drift ---

func TestDrift_NoPrevious(t *testing.T) {
	got := Drift(72, nil, 10)
	want := DriftResult{HasDrift: false, Delta: 0, Direction: DirectionNone, Severity: SeverityNone}
	if got != want {
		t.Errorf("Drift(72, nil) = %+v, want %+v", got, want)
	}
}

func TestDrift_Table(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		threshold float64
		want      DriftResult
	}{
		{"significant improvement", 80, 60, 10, DriftResult{true, 20, DirectionImproved, SeveritySignificant}},
		{"significant decline", 60, 80, 10, DriftResult{true, -20, DirectionDeclined, SeveritySignificant}},
		{"small improvement", 65, 60, 10, DriftResult{false, 5, DirectionImproved, SeverityNone}},
		{"moderate", 72, 60, 10, DriftResult{true, 12, DirectionImproved, SeverityModerate}},
		{"exactly threshold", 70, 60, 10, DriftResult{false, 10, DirectionImproved, SeverityNone}},
		{"exactly 1.5x threshold", 75, 60, 10, DriftResult{true, 15, DirectionImproved, SeverityModerate}},
		{"unchanged", 60, 60, 10, DriftResult{false, 0, DirectionNone, SeverityNone}},
		{"default threshold", 60, 80, 0, DriftResult{true, -20, DirectionDeclined, SeveritySignificant}},
		{"custom threshold", 66, 60, 4, DriftResult{true, 6, DirectionImproved, SeverityModerate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Drift(tt.cur, ptr(tt.prev), tt.threshold)
			if got != tt.want {
				t.Errorf("Drift(%v, %v, %v) = %+v, want %+v", tt.cur, tt.prev, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestDimensionDrift_OnlySharedDimensions(t *testing.T) {
	cur := map[bank.Dimension]float64{
		bank.Transparency:   80,
		bank.Explainability: 50,
		bank.Accountability: 70,
	}
	prev := map[bank.Dimension]float64{
		bank.Transparency:   60,
		bank.Explainability: 52,
		bank.HumanOversight: 40,
	}

	got := DimensionDrift(cur, prev, 10)
	if len(got) != 2 {
		t.Fatalf("got %d dimensions, want 2: %+v", len(got), got)
	}
	if r := got[bank.Transparency]; !r.HasDrift || r.Severity != SeveritySignificant {
		t.Errorf("transparency = %+v", r)
	}
	if r := got[bank.Explainability]; r.HasDrift || r.Direction != DirectionDeclined {
		t.Errorf("explainability = %+v", r)
	}
	if _, ok := got[bank.Accountability]; ok {
		t.Error("accountability has no previous score and should be absent")
	}
}

func TestDimensionDrift_NilPrevious(t *testing.T) {
	got := DimensionDrift(map[bank.Dimension]float64{bank.Transparency: 50}, nil, 10)
	if len(got) != 0 {
		t.Errorf("DimensionDrift(nil previous) = %+v, want empty", got)
	}
}

// --- Stability ---

func TestStability_InsufficientHistory(t *testing.T) {
	for _, scores := range [][]float64{nil, {70}, {70, 72}} {
		got := Stability(scores, 25, 3)
		if got.IsStable || got.Variance != nil {
			t.Errorf("Stability(%v) = %+v, want {false, nil}", scores, got)
		}
		if got.Status() != StatusProvisional {
			t.Errorf("Status() = %s, want provisional", got.Status())
		}
	}
}

func TestStability_ThreeRuns(t *testing.T) {
	got := Stability([]float64{70, 72, 71}, 25, 3)
	if got.Variance == nil {
		t.Fatal("Variance should be set with 3 runs")
	}
	// mean 71, deviations 1,1,0 → 2/3 → 0.67
	if *got.Variance != 0.67 {
		t.Errorf("Variance = %v, want 0.67", *got.Variance)
	}
	if !got.IsStable || got.Status() != StatusStable {
		t.Errorf("Stability = %+v, want stable", got)
	}
}

func TestStability_UsesLastWindowOnly(t *testing.T) {
	// The 10 would blow the variance if it were in the window.
	got := Stability([]float64{10, 80, 80, 80}, 25, 3)
	if got.Variance == nil || *got.Variance != 0 {
		t.Fatalf("Variance = %v, want 0", got.Variance)
	}
	if !got.IsStable {
		t.Error("last three identical scores should be stable")
	}
}

func TestStability_Volatile(t *testing.T) {
	got := Stability([]float64{50, 70, 60}, 25, 3)
	// mean 60, deviations 100,100,0 → 66.67
	if got.Variance == nil || *got.Variance != 66.67 {
		t.Fatalf("Variance = %v, want 66.67", got.Variance)
	}
	if got.IsStable {
		t.Error("variance 66.67 should not be stable under tolerance 25")
	}
}

func TestStability_ToleranceIsExclusive(t *testing.T) {
	// (25+25+0)/3 = 16.67
	got := Stability([]float64{55, 65, 60}, 16.67, 3)
	if got.IsStable {
		t.Error("variance equal to tolerance should not be stable")
	}
}

func TestStability_Defaults(t *testing.T) {
	got := Stability([]float64{70, 72}, 0, 0)
	if got.Variance != nil {
		t.Error("default window should be 3")
	}
	got = Stability([]float64{70, 72, 71}, 0, 0)
	if got.Variance == nil || !got.IsStable {
		t.Errorf("default tolerance should be 25, got %+v", got)
	}
}
