package summary

import (
	"reflect"
	"strings"
	"testing"

	"github.com/HendryAvila/trustlens/internal/bank"
)

func dims(tr, ex, ho, rc, ac float64) map[bank.Dimension]float64 {
	return map[bank.Dimension]float64{
		bank.Transparency:   tr,
		bank.Explainability: ex,
		bank.HumanOversight: ho,
		bank.RiskControls:   rc,
		bank.Accountability: ac,
	}
}

func ptr(v float64) *float64 { return &v }

func driverDims(ds []Driver) []bank.Dimension {
	out := make([]bank.Dimension, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Dimension)
	}
	return out
}

func mustBuild(t *testing.T, in Input) Output {
	t.Helper()
	out, err := Build(in)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return out
}

// --- Classifiers ---

func TestStatusFor(t *testing.T) {
	tests := []struct {
		count, min int
		want       Status
	}{
		{4, 5, StatusInsufficientData},
		{5, 5, StatusProvisional},
		{9, 5, StatusProvisional},
		{10, 5, StatusStable},
		{0, 0, StatusStable},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.count, tt.min); got != tt.want {
			t.Errorf("StatusFor(%d, %d) = %s, want %s", tt.count, tt.min, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{100, TierTrusted}, {80, TierTrusted},
		{79.9, TierStable}, {65, TierStable},
		{64, TierElevatedRisk}, {50, TierElevatedRisk},
		{49, TierCritical}, {0, TierCritical},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSeverityFor(t *testing.T) {
	if SeverityFor(75) != SeverityStrength || SeverityFor(74) != SeverityWatch ||
		SeverityFor(60) != SeverityWatch || SeverityFor(59) != SeverityWeak {
		t.Error("severity boundaries are wrong")
	}
}

func TestPostureFor(t *testing.T) {
	if PostureFor(75, 80) != PostureProactive {
		t.Error("both ≥ 75 should be proactive")
	}
	if PostureFor(59, 10) != PostureReactive {
		t.Error("both < 60 should be reactive")
	}
	if PostureFor(80, 50) != PostureDeveloping || PostureFor(70, 70) != PostureDeveloping {
		t.Error("mixed scores should be developing")
	}
}

// --- Drivers ---

func TestPrimaryDrivers_TwoWeakPlusStrength(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 62, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(40, 70, 55, 90, 80),
	})
	want := []bank.Dimension{bank.Transparency, bank.HumanOversight, bank.RiskControls}
	if got := driverDims(out.PrimaryDrivers); !reflect.DeepEqual(got, want) {
		t.Errorf("drivers = %v, want %v", got, want)
	}
	if out.PrimaryDrivers[0].Why != whyNarratives[bank.Transparency][SeverityWeak] {
		t.Error("driver should carry the (dimension, severity) narrative")
	}
	if out.PrimaryDrivers[2].Severity != SeverityStrength {
		t.Errorf("third driver severity = %s, want strength", out.PrimaryDrivers[2].Severity)
	}
}

func TestPrimaryDrivers_NoStrengthFallsBackToWatch(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleSystem, OverallScore: 60, ResponseCount: 6, MinResponses: 3,
		Dimensions: dims(50, 62, 55, 70, 66),
	})
	// Two weakest weak/watch: TR 50, HO 55; then best remaining watch: RC 70.
	want := []bank.Dimension{bank.Transparency, bank.HumanOversight, bank.RiskControls}
	if got := driverDims(out.PrimaryDrivers); !reflect.DeepEqual(got, want) {
		t.Errorf("drivers = %v, want %v", got, want)
	}
}

func TestPrimaryDrivers_AllWeakFallsBackToHighestRemaining(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleSystem, OverallScore: 30, ResponseCount: 6, MinResponses: 3,
		Dimensions: dims(10, 20, 30, 40, 50),
	})
	want := []bank.Dimension{bank.Transparency, bank.Explainability, bank.Accountability}
	if got := driverDims(out.PrimaryDrivers); !reflect.DeepEqual(got, want) {
		t.Errorf("drivers = %v, want %v", got, want)
	}
}

func TestPrimaryDrivers_AllStrengths(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 88, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(80, 85, 90, 95, 88),
	})
	if got := driverDims(out.PrimaryDrivers); !reflect.DeepEqual(got, []bank.Dimension{bank.RiskControls}) {
		t.Errorf("drivers = %v, want [risk_controls]", got)
	}
	// Weakest label falls back to the lowest dimension.
	if !strings.Contains(out.Headline, "Transparency") || !strings.Contains(out.Headline, "Risk Controls") {
		t.Errorf("headline = %q", out.Headline)
	}
}

func TestPrimaryDrivers_TiesBreakCanonically(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 70, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(60, 60, 60, 80, 80),
	})
	want := []bank.Dimension{bank.Transparency, bank.Explainability, bank.RiskControls}
	if got := driverDims(out.PrimaryDrivers); !reflect.DeepEqual(got, want) {
		t.Errorf("drivers = %v, want %v", got, want)
	}
}

// --- Priorities ---

func TestPriorities_TwoLowestRegardlessOfDrivers(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 85, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(90, 76, 95, 80, 88),
	})
	if len(out.Priorities) != 2 {
		t.Fatalf("got %d priorities, want 2", len(out.Priorities))
	}
	if out.Priorities[0].Dimension != bank.Explainability || out.Priorities[1].Dimension != bank.RiskControls {
		t.Errorf("priorities = %s, %s", out.Priorities[0].Dimension, out.Priorities[1].Dimension)
	}
	p := out.Priorities[0]
	if p.Title == "" || p.Rationale == "" || len(p.Probes) == 0 {
		t.Errorf("priority template not expanded: %+v", p)
	}
}

// --- Headline ---

func TestHeadline_EarlySignalPrefix(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 55, ResponseCount: 2, MinResponses: 5,
		Dimensions: dims(40, 70, 55, 90, 80),
	})
	if out.Status != StatusInsufficientData {
		t.Fatalf("status = %s, want insufficient_data", out.Status)
	}
	if !strings.HasPrefix(out.Headline, "Early signal: ") {
		t.Errorf("headline = %q, want Early signal prefix", out.Headline)
	}
}

func TestHeadline_InterpolatesLabelsAndModule(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleSystem, OverallScore: 55, ResponseCount: 10, MinResponses: 3,
		Dimensions: dims(40, 70, 55, 90, 80),
	})
	if strings.HasPrefix(out.Headline, "Early signal") {
		t.Error("stable status should not carry the early signal prefix")
	}
	for _, want := range []string{"This system's", "Transparency", "Risk Controls", "elevated risk"} {
		if !strings.Contains(out.Headline, want) {
			t.Errorf("headline %q should contain %q", out.Headline, want)
		}
	}
	if strings.Contains(out.Headline, "{") {
		t.Errorf("headline has an unfilled placeholder: %q", out.Headline)
	}
}

func TestHeadline_EveryTemplateFilled(t *testing.T) {
	for tier, byStatus := range headlineTemplates {
		for status := range byStatus {
			for m := range subjectNouns {
				ranked := rank(dims(40, 70, 55, 90, 80))
				h := headline(m, tier, status, primaryDrivers(ranked), ranked)
				if strings.Contains(h, "{") {
					t.Errorf("%s/%s/%s headline unfilled: %q", tier, status, m, h)
				}
			}
		}
	}
}

// --- Notes ---

func TestConfidenceNote_CitesCounts(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 70, ResponseCount: 7, MinResponses: 5,
		Dimensions: dims(70, 70, 70, 70, 70),
	})
	if out.Status != StatusProvisional {
		t.Fatalf("status = %s", out.Status)
	}
	for _, want := range []string{"7 responses", "minimum of 5", "10 needed"} {
		if !strings.Contains(out.ConfidenceNote, want) {
			t.Errorf("confidence note %q should contain %q", out.ConfidenceNote, want)
		}
	}
	if strings.Contains(out.ConfidenceNote, "%!") {
		t.Errorf("confidence note has a format error: %q", out.ConfidenceNote)
	}
}

func TestTrendNote_OmittedWithoutPrevious(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 70, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(70, 70, 70, 70, 70),
	})
	if out.TrendNote != "" {
		t.Errorf("trend note = %q, want empty", out.TrendNote)
	}
}

func TestTrendNote_Stable(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 70, ResponseCount: 20, MinResponses: 5,
		Dimensions: dims(70, 70, 70, 70, 70), PreviousOverall: ptr(68),
	})
	if out.TrendNote != "Stable" {
		t.Errorf("trend note = %q, want Stable", out.TrendNote)
	}
}

func TestTrendNote_DirectionAndLargestMover(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 62, ResponseCount: 20, MinResponses: 5,
		Dimensions:         dims(70, 60, 60, 50, 70),
		PreviousOverall:    ptr(70),
		PreviousDimensions: dims(72, 62, 60, 70, 72),
	})
	want := "Declined by 8 points since the previous assessment; largest movement in Risk Controls (down 20)."
	if out.TrendNote != want {
		t.Errorf("trend note = %q, want %q", out.TrendNote, want)
	}
}

func TestTrendNote_SmallDimensionMovesOmitted(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleOrganisation, OverallScore: 75, ResponseCount: 20, MinResponses: 5,
		Dimensions:         dims(75, 75, 75, 75, 75),
		PreviousOverall:    ptr(70),
		PreviousDimensions: dims(73, 73, 73, 73, 73),
	})
	if out.TrendNote != "Improved by 5 points since the previous assessment." {
		t.Errorf("trend note = %q", out.TrendNote)
	}
}

// --- Validation ---

func TestBuild_RejectsBadInput(t *testing.T) {
	if _, err := Build(Input{Module: "team", Dimensions: dims(1, 2, 3, 4, 5)}); err == nil {
		t.Error("unknown module should fail")
	}
	partial := dims(1, 2, 3, 4, 5)
	delete(partial, bank.Accountability)
	if _, err := Build(Input{Module: ModuleSystem, Dimensions: partial}); err == nil {
		t.Error("missing dimension should fail")
	}
}

// All 25 questions at defined: every dimension 50, overall 50.
func TestBuild_AllDefinedScenario(t *testing.T) {
	out := mustBuild(t, Input{
		Module: ModuleSystem, OverallScore: 50, ResponseCount: 25, MinResponses: 1,
		Dimensions: dims(50, 50, 50, 50, 50),
	})
	if out.Tier != TierElevatedRisk {
		t.Errorf("tier = %s, want elevated_risk", out.Tier)
	}
	if out.Posture != PostureReactive {
		t.Errorf("posture = %s, want reactive", out.Posture)
	}
	for d, s := range out.Severities {
		if s != SeverityWeak {
			t.Errorf("%s severity = %s, want weak", d, s)
		}
	}
}
