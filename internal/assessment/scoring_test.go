package assessment

import (
	"errors"
	"reflect"
	"testing"
)

var stopBangIDs = []string{"snoring", "tired", "observed", "pressure", "bmi", "age", "neck", "gender"}

// stopBangAnswers answers every question, the first n true.
func stopBangAnswers(t *testing.T, n int) ResponseSet {
	t.Helper()
	c := NewCollector(StopBang().Bank())
	for i, id := range stopBangIDs {
		if err := c.SetAnswer(id, i < n); err != nil {
			t.Fatalf("SetAnswer(%s): %v", id, err)
		}
	}
	if !c.IsComplete() {
		t.Fatal("expected complete response set")
	}
	return c.Responses()
}

func TestStopBang_Scenarios(t *testing.T) {
	tests := []struct {
		trueCount int
		wantTier  Tier
	}{
		{0, TierLow},
		{2, TierLow},
		{3, TierMedium},
		{4, TierMedium},
		{5, TierHigh},
		{8, TierHigh},
	}
	for _, tt := range tests {
		r := StopBang().Evaluate(stopBangAnswers(t, tt.trueCount))
		if r.Score != tt.trueCount {
			t.Errorf("%d true: score = %d", tt.trueCount, r.Score)
		}
		if r.Tier != tt.wantTier {
			t.Errorf("%d true: tier = %q, want %q", tt.trueCount, r.Tier, tt.wantTier)
		}
		if r.MaxScore != 8 {
			t.Errorf("max score = %d, want 8", r.MaxScore)
		}
		if r.Kind != ResultTiered {
			t.Errorf("kind = %q", r.Kind)
		}
	}
}

func TestStopBang_BoundariesDiffer(t *testing.T) {
	bands := StopBang().Bands()
	for _, b := range bands[:len(bands)-1] {
		at, _ := bands.TierFor(b.Max)
		above, _ := bands.TierFor(b.Max + 1)
		if at == above {
			t.Errorf("scores %d and %d both map to %q", b.Max, b.Max+1, at)
		}
	}
}

func TestStopBang_AllCombinations(t *testing.T) {
	a := StopBang()
	for mask := 0; mask < 1<<len(stopBangIDs); mask++ {
		rs := ResponseSet{}
		want := 0
		for i, id := range stopBangIDs {
			yes := mask&(1<<i) != 0
			if yes {
				want++
			}
			rs[id] = Answer{Kind: KindBinary, Bool: yes}
		}
		r := a.Evaluate(rs)
		if r.Score < 0 || r.Score > 8 {
			t.Fatalf("mask %08b: score %d out of range", mask, r.Score)
		}
		if r.Score != want {
			t.Fatalf("mask %08b: score %d, want %d", mask, r.Score, want)
		}
		if r.Tier == "" {
			t.Fatalf("mask %08b: no tier for score %d", mask, r.Score)
		}
		if again := a.Evaluate(rs); !reflect.DeepEqual(r, again) {
			t.Fatalf("mask %08b: evaluation not deterministic", mask)
		}
	}
}

func TestStopBang_PartialAndForeignAnswers(t *testing.T) {
	a := StopBang()
	r := a.Evaluate(nil)
	if r.Score != 0 || r.Tier != TierLow {
		t.Errorf("nil set: got score %d tier %q", r.Score, r.Tier)
	}

	rs := ResponseSet{
		"snoring": {Kind: KindBinary, Bool: true},
		"tired":   {Kind: KindBinary, Bool: true},
		"extra":   {Kind: KindBinary, Bool: true},
		"neck":    {Kind: KindSingle, Choice: "yes"},
	}
	if r := a.Evaluate(rs); r.Score != 2 {
		t.Errorf("expected only in-bank binary answers to count, got %d", r.Score)
	}
}

func TestBands_EveryScoreHasExactlyOneTier(t *testing.T) {
	bands := StopBang().Bands()
	for score := 0; score <= 8; score++ {
		matches := 0
		for _, b := range bands {
			if score >= b.Min && score <= b.Max {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("score %d matched %d bands", score, matches)
		}
	}
	if _, ok := bands.TierFor(9); ok {
		t.Error("score above max must not map")
	}
	if _, ok := bands.TierFor(-1); ok {
		t.Error("negative score must not map")
	}
}

func TestNewBands_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		max   int
		bands []Band
	}{
		{"none", 3, nil},
		{"negative max", -1, []Band{{Tier: "a", Min: 0, Max: 0}}},
		{"gap", 5, []Band{{Tier: "a", Min: 0, Max: 1}, {Tier: "b", Min: 3, Max: 5}}},
		{"overlap", 5, []Band{{Tier: "a", Min: 0, Max: 3}, {Tier: "b", Min: 3, Max: 5}}},
		{"starts late", 5, []Band{{Tier: "a", Min: 1, Max: 5}}},
		{"ends early", 5, []Band{{Tier: "a", Min: 0, Max: 4}}},
		{"past max", 5, []Band{{Tier: "a", Min: 0, Max: 6}}},
		{"inverted", 5, []Band{{Tier: "a", Min: 0, Max: 2}, {Tier: "b", Min: 5, Max: 3}}},
		{"duplicate tier", 5, []Band{{Tier: "a", Min: 0, Max: 2}, {Tier: "a", Min: 3, Max: 5}}},
		{"empty tier", 5, []Band{{Min: 0, Max: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBands(tt.max, tt.bands...); !errors.Is(err, ErrInvalidBands) {
				t.Errorf("expected ErrInvalidBands, got %v", err)
			}
		})
	}
}

func TestNewBands_SortsInput(t *testing.T) {
	bands, err := NewBands(8,
		Band{Tier: TierHigh, Min: 5, Max: 8},
		Band{Tier: TierLow, Min: 0, Max: 2},
		Band{Tier: TierMedium, Min: 3, Max: 4},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Tier{TierLow, TierMedium, TierHigh}
	if got := bands.Tiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewTiered_Errors(t *testing.T) {
	bank := MustNewBank("demo", "Demo", []Question{
		{ID: "a", Prompt: "A?", Kind: KindBinary},
		{ID: "b", Prompt: "B?", Kind: KindBinary},
	})
	bands := []Band{{Tier: "lo", Min: 0, Max: 1}, {Tier: "hi", Min: 2, Max: 2}}

	if _, err := NewTiered(bank, bands, map[Tier]Interpretation{"lo": {Label: "Lo"}}); err == nil {
		t.Error("expected error for tier without interpretation")
	}
	if _, err := NewTiered(bank, bands[:1], map[Tier]Interpretation{"lo": {}}); !errors.Is(err, ErrInvalidBands) {
		t.Errorf("expected ErrInvalidBands for uncovered score, got %v", err)
	}
	selectOnly := MustNewBank("s", "S", []Question{{ID: "a", Prompt: "A?", Kind: KindSingle, Options: []Option{{Value: "x"}}}})
	if _, err := NewTiered(selectOnly, bands, nil); !errors.Is(err, ErrInvalidBank) {
		t.Errorf("expected ErrInvalidBank for bank without binary questions, got %v", err)
	}

	tiered, err := NewTiered(bank, bands, map[Tier]Interpretation{"lo": {Label: "Lo"}, "hi": {Label: "Hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := tiered.Interpret(Result{Tier: "hi"})
	if len(entries) != 1 || entries[0].Key != "hi" {
		t.Errorf("expected hi entry keyed by tier, got %+v", entries)
	}
	if got := tiered.Interpret(Result{Tier: "nope"}); got != nil {
		t.Errorf("expected no entry for unknown tier, got %+v", got)
	}
}
