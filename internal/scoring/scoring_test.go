package scoring

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/HendryAvila/trustlens/internal/bank"
)

// uniformAnswers answers every bank question with the same maturity level.
func uniformAnswers(b *bank.Bank, m bank.Maturity) bank.Answers {
	answers := make(bank.Answers, b.Len())
	for _, id := range b.IDs() {
		answers[id] = bank.MaturityAnswer(m)
	}
	return answers
}

// --- Normalize ---

func TestNormalize_MaturityLevels(t *testing.T) {
	q := bank.Question{ID: "Q", AnswerType: bank.AnswerMaturity}
	want := map[bank.Maturity]float64{
		bank.MaturityNone:      0,
		bank.MaturityAdHoc:     0.25,
		bank.MaturityDefined:   0.5,
		bank.MaturityEnforced:  0.75,
		bank.MaturityAutomated: 1.0,
	}
	for m, w := range want {
		got, err := Normalize(q, bank.MaturityAnswer(m))
		if err != nil {
			t.Fatalf("Normalize(%s) error: %v", m, err)
		}
		if got != w {
			t.Errorf("Normalize(%s) = %v, want %v", m, got, w)
		}
	}
}

func TestNormalize_Boolean(t *testing.T) {
	q := bank.Question{ID: "Q", AnswerType: bank.AnswerBoolean}
	if got, _ := Normalize(q, bank.BoolAnswer(true)); got != 1 {
		t.Errorf("Normalize(true) = %v, want 1", got)
	}
	if got, _ := Normalize(q, bank.BoolAnswer(false)); got != 0 {
		t.Errorf("Normalize(false) = %v, want 0", got)
	}
}

func TestNormalize_ShapeMismatch(t *testing.T) {
	yes := true
	level := bank.MaturityDefined
	bad := bank.Maturity("expert")

	tests := []struct {
		name string
		q    bank.Question
		a    bank.Answer
	}{
		{"boolean on maturity", bank.Question{ID: "M", AnswerType: bank.AnswerMaturity}, bank.Answer{Boolean: &yes}},
		{"maturity on boolean", bank.Question{ID: "B", AnswerType: bank.AnswerBoolean}, bank.Answer{Maturity: &level}},
		{"both set", bank.Question{ID: "M", AnswerType: bank.AnswerMaturity}, bank.Answer{Maturity: &level, Boolean: &yes}},
		{"neither set", bank.Question{ID: "M", AnswerType: bank.AnswerMaturity}, bank.Answer{}},
		{"unknown level", bank.Question{ID: "M", AnswerType: bank.AnswerMaturity}, bank.Answer{Maturity: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.q, tt.a)
			if !errors.Is(err, ErrInvalidAnswerShape) {
				t.Fatalf("Normalize error = %v, want ErrInvalidAnswerShape", err)
			}
			var iae *InvalidAnswerError
			if !errors.As(err, &iae) || iae.QuestionID != tt.q.ID {
				t.Errorf("error should carry question id %q, got %v", tt.q.ID, err)
			}
		})
	}
}

// Evidence is audit metadata only: attaching it must not change the score.
func TestNormalize_EvidenceHasNoScoringEffect(t *testing.T) {
	q := bank.Question{ID: "Q", AnswerType: bank.AnswerMaturity}
	plain := bank.MaturityAnswer(bank.MaturityAdHoc)
	withEvidence := bank.MaturityAnswer(bank.MaturityAdHoc)
	withEvidence.Evidence = &bank.Evidence{Type: "doc", Pointer: "https://wiki/policy"}

	a, _ := Normalize(q, plain)
	b, _ := Normalize(q, withEvidence)
	if a != b {
		t.Errorf("evidence changed score: %v vs %v", a, b)
	}
}

// --- Score ---

func TestScore_AllDefinedIsFifty(t *testing.T) {
	b := bank.Default()
	res, err := Score(b, uniformAnswers(b, bank.MaturityDefined))
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	for _, d := range bank.Dimensions {
		if res.Dimensions[d] != 50 {
			t.Errorf("dimension %s = %d, want 50", d, res.Dimensions[d])
		}
	}
	if res.Overall != 50 {
		t.Errorf("overall = %d, want 50", res.Overall)
	}
}

func TestScore_Extremes(t *testing.T) {
	b := bank.Default()
	lo, _ := Score(b, uniformAnswers(b, bank.MaturityNone))
	hi, _ := Score(b, uniformAnswers(b, bank.MaturityAutomated))
	if lo.Overall != 0 {
		t.Errorf("all none overall = %d, want 0", lo.Overall)
	}
	if hi.Overall != 100 {
		t.Errorf("all automated overall = %d, want 100", hi.Overall)
	}
}

func TestScore_WeightedDimension(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityNone)
	// TR-01 carries weight 0.25: automated there alone gives 25.
	answers["TR-01"] = bank.MaturityAnswer(bank.MaturityAutomated)

	res, err := Score(b, answers)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dimensions[bank.Transparency] != 25 {
		t.Errorf("transparency = %d, want 25", res.Dimensions[bank.Transparency])
	}
	// Overall = round(25/5) = 5.
	if res.Overall != 5 {
		t.Errorf("overall = %d, want 5", res.Overall)
	}
}

func TestScore_OverallRoundsMean(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityNone)
	// TR-05 (0.15) at ad_hoc → 3.75 → 4; overall 4/5 = 0.8 → 1.
	answers["TR-05"] = bank.MaturityAnswer(bank.MaturityAdHoc)
	res, _ := Score(b, answers)
	if res.Dimensions[bank.Transparency] != 4 {
		t.Errorf("transparency = %d, want 4", res.Dimensions[bank.Transparency])
	}
	if res.Overall != 1 {
		t.Errorf("overall = %d, want 1", res.Overall)
	}
}

func TestScore_HalfPointRoundsUp(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityDefined)
	// 0.25·0 + 0.2·0.5 + 0.2·1 + 0.2·1 + 0.15·0.5 = 0.575 → 57.5 → 58.
	answers["TR-01"] = bank.MaturityAnswer(bank.MaturityNone)
	answers["TR-03"] = bank.MaturityAnswer(bank.MaturityAutomated)
	answers["TR-04"] = bank.MaturityAnswer(bank.MaturityAutomated)

	res, err := Score(b, answers)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Dimensions[bank.Transparency]; got != 58 {
		t.Errorf("transparency = %d, want 58", got)
	}
}

// Every maturity combination in one dimension must round like exact
// integer arithmetic: weights in hundredths, levels in quarter steps.
func TestScore_DimensionRoundingMatchesExact(t *testing.T) {
	b := bank.Default()
	qs := b.ByDimension(bank.Transparency)
	levels := bank.MaturityLevels

	idx := make([]int, len(qs))
	for {
		answers := uniformAnswers(b, bank.MaturityNone)
		quarters := 0
		for i, q := range qs {
			answers[q.ID] = bank.MaturityAnswer(levels[idx[i]])
			quarters += int(math.Round(q.Weight*100)) * idx[i]
		}
		want := (quarters + 2) / 4

		res, err := Score(b, answers)
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Dimensions[bank.Transparency]; got != want {
			t.Errorf("levels %v: transparency = %d, want %d (exact %.2f)", idx, got, want, float64(quarters)/4)
		}

		// Advance the odometer.
		i := 0
		for ; i < len(idx); i++ {
			idx[i]++
			if idx[i] < len(levels) {
				break
			}
			idx[i] = 0
		}
		if i == len(idx) {
			return
		}
	}
}

func TestScore_IncompleteAnswers(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityDefined)
	delete(answers, "RC-02")
	delete(answers, "AC-05")

	_, err := Score(b, answers)
	if !errors.Is(err, ErrIncompleteAnswers) {
		t.Fatalf("Score error = %v, want ErrIncompleteAnswers", err)
	}
	var inc *IncompleteAnswersError
	if !errors.As(err, &inc) {
		t.Fatal("error should be *IncompleteAnswersError")
	}
	if !reflect.DeepEqual(inc.Missing, []string{"AC-05", "RC-02"}) {
		t.Errorf("Missing = %v, want [AC-05 RC-02]", inc.Missing)
	}
}

func TestScore_UnknownQuestionRejected(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityDefined)
	answers["ZZ-99"] = bank.MaturityAnswer(bank.MaturityDefined)

	if _, err := Score(b, answers); !errors.Is(err, ErrInvalidAnswerShape) {
		t.Errorf("Score error = %v, want ErrInvalidAnswerShape", err)
	}
}

func TestScore_Deterministic(t *testing.T) {
	b := bank.Default()
	answers := uniformAnswers(b, bank.MaturityEnforced)
	answers["HO-02"] = bank.MaturityAnswer(bank.MaturityAdHoc)

	first, _ := Score(b, answers)
	for i := 0; i < 20; i++ {
		again, _ := Score(b, answers)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

// Raising a single answer never lowers that question's dimension score.
func TestScore_Monotonic(t *testing.T) {
	b := bank.Default()
	for _, q := range b.Questions() {
		prev := -1
		for _, m := range bank.MaturityLevels {
			answers := uniformAnswers(b, bank.MaturityAdHoc)
			answers[q.ID] = bank.MaturityAnswer(m)
			res, err := Score(b, answers)
			if err != nil {
				t.Fatal(err)
			}
			got := res.Dimensions[q.Dimension]
			if got < prev {
				t.Fatalf("%s at %s: dimension score %d dropped below %d", q.ID, m, got, prev)
			}
			prev = got
		}
	}
}

func TestScore_BooleanBank(t *testing.T) {
	var qs []bank.Question
	for _, d := range bank.Dimensions {
		qs = append(qs,
			bank.Question{ID: string(d) + "-1", Dimension: d, AnswerType: bank.AnswerBoolean, Weight: 0.6, Remediation: "x"},
			bank.Question{ID: string(d) + "-2", Dimension: d, AnswerType: bank.AnswerBoolean, Weight: 0.4, Remediation: "y"},
		)
	}
	b, err := bank.New("bool", qs)
	if err != nil {
		t.Fatal(err)
	}
	answers := bank.Answers{}
	for _, q := range qs {
		answers[q.ID] = bank.BoolAnswer(q.Weight == 0.6)
	}
	res, err := Score(b, answers)
	if err != nil {
		t.Fatal(err)
	}
	if res.Overall != 60 {
		t.Errorf("overall = %d, want 60", res.Overall)
	}
}
