package risk

import (
	"errors"
	"reflect"
	"testing"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/scoring"
)

func defaultRuleSet(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet(bank.Default(), DefaultRules())
	if err != nil {
		t.Fatalf("NewRuleSet(default) error: %v", err)
	}
	return rs
}

func uniform(m bank.Maturity) bank.Answers {
	b := bank.Default()
	answers := make(bank.Answers, b.Len())
	for _, id := range b.IDs() {
		answers[id] = bank.MaturityAnswer(m)
	}
	return answers
}

func codes(flags []Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Code)
	}
	return out
}

// --- Evaluate ---

func TestEvaluate_AllEnforced_NoFlags(t *testing.T) {
	flags, err := defaultRuleSet(t).Evaluate(uniform(bank.MaturityEnforced))
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 0 {
		t.Errorf("flags = %v, want none", codes(flags))
	}
}

func TestEvaluate_AllNone_EveryRuleFires(t *testing.T) {
	flags, err := defaultRuleSet(t).Evaluate(uniform(bank.MaturityNone))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"HUMAN_OVERSIGHT_GAP",
		"RISK_CONTROL_GAP",
		"OPAQUE_DECISIONING",
		"NO_ACCOUNTABLE_OWNER",
		"UNMANAGED_INCIDENTS",
		"UNOBSERVED_PRODUCTION",
	}
	if !reflect.DeepEqual(codes(flags), want) {
		t.Errorf("codes = %v, want %v", codes(flags), want)
	}
	for _, f := range flags {
		if f.Source != SourceComputed {
			t.Errorf("flag %s source = %s, want computed", f.Code, f.Source)
		}
	}
}

func TestEvaluate_AnyBelowSingleQuestion(t *testing.T) {
	answers := uniform(bank.MaturityEnforced)
	answers["HO-04"] = bank.MaturityAnswer(bank.MaturityNone)

	flags, _ := defaultRuleSet(t).Evaluate(answers)
	if !reflect.DeepEqual(codes(flags), []string{"HUMAN_OVERSIGHT_GAP"}) {
		t.Errorf("codes = %v, want [HUMAN_OVERSIGHT_GAP]", codes(flags))
	}
}

// ad_hoc (0.25) is not below the 0.25 floor.
func TestEvaluate_FloorIsExclusive(t *testing.T) {
	answers := uniform(bank.MaturityEnforced)
	answers["HO-04"] = bank.MaturityAnswer(bank.MaturityAdHoc)

	flags, _ := defaultRuleSet(t).Evaluate(answers)
	if len(flags) != 0 {
		t.Errorf("flags = %v, want none", codes(flags))
	}
}

func TestEvaluate_CombinationNeedsAllQuestions(t *testing.T) {
	rs := defaultRuleSet(t)

	answers := uniform(bank.MaturityEnforced)
	answers["RC-04"] = bank.MaturityAnswer(bank.MaturityAdHoc)
	flags, _ := rs.Evaluate(answers)
	for _, f := range flags {
		if f.Code == "UNMANAGED_INCIDENTS" {
			t.Fatal("UNMANAGED_INCIDENTS should need both RC-04 and HO-03 below floor")
		}
	}

	answers["HO-03"] = bank.MaturityAnswer(bank.MaturityAdHoc)
	flags, _ = rs.Evaluate(answers)
	if !reflect.DeepEqual(codes(flags), []string{"UNMANAGED_INCIDENTS"}) {
		t.Errorf("codes = %v, want [UNMANAGED_INCIDENTS]", codes(flags))
	}
}

func TestEvaluate_DimensionBelowNeedsEveryDimension(t *testing.T) {
	rs := defaultRuleSet(t)
	answers := uniform(bank.MaturityEnforced)
	for _, q := range bank.Default().ByDimension(bank.Transparency) {
		answers[q.ID] = bank.MaturityAnswer(bank.MaturityAdHoc)
	}
	flags, _ := rs.Evaluate(answers)
	if len(flags) != 0 {
		t.Fatalf("transparency alone should not fire, got %v", codes(flags))
	}

	for _, q := range bank.Default().ByDimension(bank.Explainability) {
		answers[q.ID] = bank.MaturityAnswer(bank.MaturityAdHoc)
	}
	flags, _ = rs.Evaluate(answers)
	if !reflect.DeepEqual(codes(flags), []string{"OPAQUE_DECISIONING"}) {
		t.Errorf("codes = %v, want [OPAQUE_DECISIONING]", codes(flags))
	}
}

func TestEvaluate_IncompleteAnswers(t *testing.T) {
	answers := uniform(bank.MaturityEnforced)
	delete(answers, "TR-01")
	if _, err := defaultRuleSet(t).Evaluate(answers); !errors.Is(err, scoring.ErrIncompleteAnswers) {
		t.Errorf("Evaluate error = %v, want ErrIncompleteAnswers", err)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	rs := defaultRuleSet(t)
	answers := uniform(bank.MaturityAdHoc)
	first, _ := rs.Evaluate(answers)
	for i := 0; i < 10; i++ {
		again, _ := rs.Evaluate(answers)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("evaluation %d differs", i)
		}
	}
}

// --- NewRuleSet ---

func TestNewRuleSet_RejectsBrokenRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"unknown question", Rule{Code: "X", Label: "x", Kind: KindAllBelow, QuestionIDs: []string{"NOPE"}}},
		{"unknown dimension", Rule{Code: "X", Label: "x", Kind: KindAnyBelow, Dimensions: []bank.Dimension{"nope"}}},
		{"no selector", Rule{Code: "X", Label: "x", Kind: KindDimensionBelow}},
		{"unknown kind", Rule{Code: "X", Label: "x", Kind: "sometimes"}},
		{"no label", Rule{Code: "X", Kind: KindAllBelow, QuestionIDs: []string{"AC-01"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleSet(bank.Default(), []Rule{tt.rule})
			if !errors.Is(err, bank.ErrConfiguration) {
				t.Errorf("NewRuleSet error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestNewRuleSet_DuplicateCode(t *testing.T) {
	rules := DefaultRules()
	rules = append(rules, rules[0])
	if _, err := NewRuleSet(bank.Default(), rules); !errors.Is(err, bank.ErrConfiguration) {
		t.Errorf("NewRuleSet error = %v, want ErrConfiguration", err)
	}
}

// --- Merge ---

func TestMerge_ReplacesComputedKeepsAdmin(t *testing.T) {
	previous := []Flag{
		{Code: "OLD_COMPUTED", Source: SourceComputed},
		{Code: "ADMIN_HOLD", Label: "Hold", Description: "manual", Source: SourceAdmin},
	}
	computed := []Flag{{Code: "NEW_A", Source: SourceComputed}, {Code: "NEW_B", Source: SourceComputed}}

	got := Merge(computed, previous)
	if !reflect.DeepEqual(codes(got), []string{"NEW_A", "NEW_B", "ADMIN_HOLD"}) {
		t.Fatalf("codes = %v, want [NEW_A NEW_B ADMIN_HOLD]", codes(got))
	}
	if got[2] != previous[1] {
		t.Errorf("admin flag changed: %+v", got[2])
	}
}

func TestMerge_NoPrevious(t *testing.T) {
	got := Merge([]Flag{{Code: "A"}}, nil)
	if len(got) != 1 || got[0].Source != SourceComputed {
		t.Errorf("Merge = %+v", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	computed := []Flag{{Code: "A", Source: SourceComputed}}
	previous := []Flag{{Code: "ADMIN", Source: SourceAdmin}}
	once := Merge(computed, previous)
	twice := Merge(computed, once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-merging changed flags: %v vs %v", codes(once), codes(twice))
	}
}

func TestAdminFlags(t *testing.T) {
	got := AdminFlags([]Flag{{Code: "A", Source: SourceComputed}, {Code: "B", Source: SourceAdmin}})
	if len(got) != 1 || got[0].Code != "B" {
		t.Errorf("AdminFlags = %v", codes(got))
	}
}
