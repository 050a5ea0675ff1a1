package assessment

import (
	"errors"
	"reflect"
	"testing"
)

func multiBank(t *testing.T) *Bank {
	t.Helper()
	b, err := NewBank("multi", "Multi", []Question{
		{ID: "pick", Prompt: "Pick up to 3", Kind: KindMulti, MaxChoices: 3, Options: []Option{
			{Value: "a"}, {Value: "b"}, {Value: "c"}, {Value: "d"}, {Value: "e"},
		}},
		{ID: "one", Prompt: "Pick one", Kind: KindSingle, Options: []Option{{Value: "x"}, {Value: "y"}}},
		{ID: "yes", Prompt: "Yes?", Kind: KindBinary},
	})
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return b
}

func TestCollector_CompletionGating(t *testing.T) {
	c := NewCollector(StopBang().Bank())
	ids := []string{"snoring", "tired", "observed", "pressure", "bmi", "age", "neck"}
	for _, id := range ids {
		if err := c.SetAnswer(id, false); err != nil {
			t.Fatalf("SetAnswer(%s): %v", id, err)
		}
		if c.IsComplete() {
			t.Fatalf("complete after answering %s", id)
		}
	}
	if got := c.Missing(); !reflect.DeepEqual(got, []string{"gender"}) {
		t.Errorf("expected gender missing, got %v", got)
	}

	if err := c.SetAnswer("gender", true); err != nil {
		t.Fatalf("SetAnswer(gender): %v", err)
	}
	if !c.IsComplete() {
		t.Error("expected complete after all 8 answered")
	}
	if len(c.Missing()) != 0 {
		t.Errorf("expected nothing missing, got %v", c.Missing())
	}
}

func TestCollector_BinaryReplaces(t *testing.T) {
	c := NewCollector(StopBang().Bank())
	_ = c.SetAnswer("snoring", true)
	_ = c.SetAnswer("snoring", "no")
	if c.Responses().Bool("snoring") {
		t.Error("expected second answer to replace the first")
	}
	_ = c.SetAnswer("snoring", "Yes")
	if !c.Responses().Bool("snoring") {
		t.Error("expected yes to parse as true")
	}
}

func TestCollector_SingleReplaces(t *testing.T) {
	c := NewCollector(multiBank(t))
	_ = c.SetAnswer("one", "x")
	_ = c.SetAnswer("one", "y")
	if got := c.Responses().Choice("one"); got != "y" {
		t.Errorf("expected y, got %q", got)
	}
}

func TestCollector_MultiSelectCap(t *testing.T) {
	c := NewCollector(multiBank(t))
	for _, v := range []string{"a", "b", "c"} {
		if err := c.SetAnswer("pick", v); err != nil {
			t.Fatalf("SetAnswer(%s): %v", v, err)
		}
	}
	if err := c.SetAnswer("pick", "d"); err != nil {
		t.Fatalf("over-cap add should be silent, got %v", err)
	}
	got := c.Responses().Choices("pick")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected selection unchanged at [a b c], got %v", got)
	}

	// Removing one frees a slot.
	_ = c.SetAnswer("pick", "b")
	_ = c.SetAnswer("pick", "d")
	got = c.Responses().Choices("pick")
	if !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Errorf("expected [a c d], got %v", got)
	}
}

func TestCollector_ToggleIsIdempotentInPairs(t *testing.T) {
	c := NewCollector(multiBank(t))
	_ = c.SetAnswer("pick", "a")
	before := c.Responses().Choices("pick")

	_ = c.SetAnswer("pick", "e")
	_ = c.SetAnswer("pick", "e")
	after := c.Responses().Choices("pick")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("expected %v after double toggle, got %v", before, after)
	}

	_ = c.SetAnswer("pick", "a")
	if c.Answered("pick") {
		t.Error("empty selection must not count as answered")
	}
}

func TestCollector_Rejections(t *testing.T) {
	c := NewCollector(multiBank(t))
	tests := []struct {
		name  string
		id    string
		value any
		want  error
	}{
		{"unknown question", "nope", true, ErrUnknownQuestion},
		{"binary not bool", "yes", "maybe", ErrInvalidAnswer},
		{"binary number", "yes", 1, ErrInvalidAnswer},
		{"single not option", "one", "z", ErrInvalidAnswer},
		{"single wrong type", "one", true, ErrInvalidAnswer},
		{"multi not option", "pick", "z", ErrInvalidAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SetAnswer(tt.id, tt.value)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if len(c.Responses()) != 0 {
		t.Errorf("rejected answers must not be recorded, got %v", c.Responses())
	}
}

func TestCollector_Clear(t *testing.T) {
	c := NewCollector(StopBang().Bank())
	for _, q := range StopBang().Bank().Questions() {
		_ = c.SetAnswer(q.ID, true)
	}
	if !c.IsComplete() {
		t.Fatal("expected complete")
	}
	c.Clear()
	if c.IsComplete() {
		t.Error("expected incomplete after Clear")
	}
	if len(c.Responses()) != 0 {
		t.Errorf("expected no answers after Clear, got %d", len(c.Responses()))
	}
}

func TestCollector_ResponsesIsCopy(t *testing.T) {
	c := NewCollector(multiBank(t))
	_ = c.SetAnswer("pick", "a")
	rs := c.Responses()
	rs["pick"].Choices[0] = "mutated"
	delete(rs, "pick")
	if got := c.Responses().Choices("pick"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("collector state leaked: %v", got)
	}
}

func TestCollector_SetAll(t *testing.T) {
	c := NewCollector(multiBank(t))
	err := c.SetAll(map[string]any{
		"pick": []any{"a", "b", "c", "d"},
		"one":  "x",
		"yes":  true,
	})
	if err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	if !c.IsComplete() {
		t.Error("expected complete")
	}
	if got := c.Responses().Choices("pick"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected cap to drop d, got %v", got)
	}

	if err := c.SetAll(map[string]any{"ghost": true}); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}
	if err := c.SetAll(map[string]any{"pick": 3}); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestCollector_SetAllRepeatedValues(t *testing.T) {
	c := NewCollector(multiBank(t))
	if err := c.SetAll(map[string]any{"pick": []any{"a", "a", "b", "a"}}); err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	if got := c.Responses().Choices("pick"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected repeats to select once, got %v", got)
	}
	if !c.Answered("pick") {
		t.Error("expected pick answered")
	}
}

func TestCollector_Restore(t *testing.T) {
	c := NewCollector(multiBank(t))
	err := c.Restore(ResponseSet{
		"pick": {Kind: KindMulti, Choices: []string{"a", "b"}},
		"one":  {Kind: KindSingle, Choice: "y"},
	})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if c.Responses().Choice("one") != "y" {
		t.Error("expected restored choice")
	}

	bad := []ResponseSet{
		{"ghost": {Kind: KindBinary, Bool: true}},
		{"one": {Kind: KindBinary, Bool: true}},
		{"one": {Kind: KindSingle, Choice: "z"}},
		{"pick": {Kind: KindMulti, Choices: []string{"a", "b", "c", "d"}}},
		{"pick": {Kind: KindMulti, Choices: []string{"zz"}}},
		{"pick": {Kind: KindMulti, Choices: []string{"a", "a"}}},
	}
	for i, rs := range bad {
		if err := c.Restore(rs); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
	if c.Responses().Choice("one") != "y" {
		t.Error("failed restore must keep previous answers")
	}
}

func TestResponseSet_MissingIsNegative(t *testing.T) {
	var rs ResponseSet
	if rs.Bool("x") || rs.Choice("x") != "" || rs.Choices("x") != nil {
		t.Error("nil response set must read as negative")
	}
	if rs.ChoiceIn("x", "") {
		t.Error("missing choice must not match empty value")
	}
	wrongKind := ResponseSet{"x": {Kind: KindSingle, Choice: "yes"}}
	if wrongKind.Bool("x") {
		t.Error("non-binary answer must not read as true")
	}
}

func TestAnswer_Value(t *testing.T) {
	if v := (Answer{Kind: KindBinary, Bool: true}).Value(); v != true {
		t.Errorf("expected true, got %v", v)
	}
	if v := (Answer{Kind: KindSingle, Choice: "x"}).Value(); v != "x" {
		t.Errorf("expected x, got %v", v)
	}
	v := (Answer{Kind: KindMulti, Choices: []string{"a"}}).Value()
	if !reflect.DeepEqual(v, []string{"a"}) {
		t.Errorf("expected [a], got %v", v)
	}
}
