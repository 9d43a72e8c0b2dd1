package recommend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/HendryAvila/trustlens/internal/bank"
	"github.com/HendryAvila/trustlens/internal/scoring"
)

func uniform(m bank.Maturity) bank.Answers {
	b := bank.Default()
	answers := make(bank.Answers, b.Len())
	for _, id := range b.IDs() {
		answers[id] = bank.MaturityAnswer(m)
	}
	return answers
}

func TestGenerate_AllDefined_NoRecommendations(t *testing.T) {
	recs, err := Generate(bank.Default(), uniform(bank.MaturityDefined))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0", len(recs))
	}
}

func TestGenerate_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		level bank.Maturity
		want  Priority // empty means no recommendation
	}{
		{bank.MaturityNone, PriorityHigh},
		{bank.MaturityAdHoc, PriorityMed},
		{bank.MaturityDefined, ""},
		{bank.MaturityEnforced, ""},
		{bank.MaturityAutomated, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			answers := uniform(bank.MaturityAutomated)
			answers["EX-03"] = bank.MaturityAnswer(tt.level)

			recs, err := Generate(bank.Default(), answers)
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if len(recs) != 0 {
					t.Errorf("got %d recommendations, want 0", len(recs))
				}
				return
			}
			if len(recs) != 1 {
				t.Fatalf("got %d recommendations, want 1", len(recs))
			}
			r := recs[0]
			if r.Priority != tt.want {
				t.Errorf("priority = %s, want %s", r.Priority, tt.want)
			}
			q, _ := bank.Default().Question("EX-03")
			if r.QuestionID != "EX-03" || r.Dimension != bank.Explainability || r.Control != q.Control {
				t.Errorf("unexpected recommendation %+v", r)
			}
			if r.Recommendation != q.Remediation {
				t.Errorf("text = %q, want the EX-03 template", r.Recommendation)
			}
		})
	}
}

func TestGenerate_SortHighFirstThenID(t *testing.T) {
	answers := uniform(bank.MaturityAutomated)
	answers["TR-02"] = bank.MaturityAnswer(bank.MaturityAdHoc)
	answers["AC-03"] = bank.MaturityAnswer(bank.MaturityAdHoc)
	answers["RC-01"] = bank.MaturityAnswer(bank.MaturityNone)
	answers["EX-05"] = bank.MaturityAnswer(bank.MaturityNone)

	recs, err := Generate(bank.Default(), answers)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range recs {
		got = append(got, string(r.Priority)+":"+r.QuestionID)
	}
	want := []string{"high:EX-05", "high:RC-01", "med:AC-03", "med:TR-02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	high, med := Count(recs)
	if high != 2 || med != 2 {
		t.Errorf("Count = %d/%d, want 2/2", high, med)
	}
}

func TestGenerate_AllNone_EveryQuestionHigh(t *testing.T) {
	recs, err := Generate(bank.Default(), uniform(bank.MaturityNone))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 25 {
		t.Fatalf("got %d, want 25", len(recs))
	}
	for _, r := range recs {
		if r.Priority != PriorityHigh {
			t.Errorf("%s priority = %s, want high", r.QuestionID, r.Priority)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	answers := uniform(bank.MaturityAdHoc)
	first, _ := Generate(bank.Default(), answers)
	for i := 0; i < 10; i++ {
		again, _ := Generate(bank.Default(), answers)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("pass %d differs", i)
		}
	}
}

func TestGenerate_IncompleteAnswers(t *testing.T) {
	answers := uniform(bank.MaturityNone)
	delete(answers, "HO-01")
	if _, err := Generate(bank.Default(), answers); !errors.Is(err, scoring.ErrIncompleteAnswers) {
		t.Errorf("Generate error = %v, want ErrIncompleteAnswers", err)
	}
}
