package assessment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidAnswer   = errors.New("invalid answer")
)

// Answer holds one recorded answer. Which field is meaningful depends on Kind.
type Answer struct {
	Kind    Kind     `json:"kind"`
	Bool    bool     `json:"bool,omitempty"`
	Choice  string   `json:"choice,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

// Value returns the answer in its natural shape: bool, string or []string.
func (a Answer) Value() any {
	switch a.Kind {
	case KindBinary:
		return a.Bool
	case KindSingle:
		return a.Choice
	default:
		out := make([]string, len(a.Choices))
		copy(out, a.Choices)
		return out
	}
}

// ResponseSet maps question id to answer. Accessors treat a missing answer
// as negative so scorers stay total over partial sets.
type ResponseSet map[string]Answer

// Bool returns the binary answer for id, false when missing.
func (rs ResponseSet) Bool(id string) bool {
	a, ok := rs[id]
	return ok && a.Kind == KindBinary && a.Bool
}

// Choice returns the single-select answer for id, "" when missing.
func (rs ResponseSet) Choice(id string) string {
	a, ok := rs[id]
	if !ok || a.Kind != KindSingle {
		return ""
	}
	return a.Choice
}

// Choices returns the multi-select answer for id.
func (rs ResponseSet) Choices(id string) []string {
	a, ok := rs[id]
	if !ok || a.Kind != KindMulti {
		return nil
	}
	return a.Choices
}

// ChoiceIn reports whether the single-select answer for id is one of values.
func (rs ResponseSet) ChoiceIn(id string, values ...string) bool {
	c := rs.Choice(id)
	if c == "" {
		return false
	}
	for _, v := range values {
		if c == v {
			return true
		}
	}
	return false
}

// Selected reports whether any of values is in the multi-select answer for id.
func (rs ResponseSet) Selected(id string, values ...string) bool {
	for _, c := range rs.Choices(id) {
		for _, v := range values {
			if c == v {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy.
func (rs ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(rs))
	for k, a := range rs {
		if a.Choices != nil {
			a.Choices = append([]string(nil), a.Choices...)
		}
		out[k] = a
	}
	return out
}

// Collector records answers against a bank and gates scoring on completion.
// It is not safe for concurrent use.
type Collector struct {
	bank      *Bank
	responses ResponseSet
}

func NewCollector(bank *Bank) *Collector {
	return &Collector{bank: bank, responses: make(ResponseSet)}
}

func (c *Collector) Bank() *Bank { return c.bank }

// SetAnswer records value for the question. Binary questions accept a bool
// or "yes"/"no"; select questions accept an option value. Binary and
// single-select answers replace any prior answer; multi-select answers
// toggle membership of value, and adding past MaxChoices is ignored.
func (c *Collector) SetAnswer(questionID string, value any) error {
	q, ok := c.bank.Lookup(questionID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}

	switch q.Kind {
	case KindBinary:
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: question %q: %v", ErrInvalidAnswer, q.ID, err)
		}
		c.responses[q.ID] = Answer{Kind: KindBinary, Bool: b}
		return nil
	case KindSingle:
		s, ok := value.(string)
		if !ok || !q.HasOption(s) {
			return fmt.Errorf("%w: question %q: %v is not an option", ErrInvalidAnswer, q.ID, value)
		}
		c.responses[q.ID] = Answer{Kind: KindSingle, Choice: s}
		return nil
	default:
		s, ok := value.(string)
		if !ok || !q.HasOption(s) {
			return fmt.Errorf("%w: question %q: %v is not an option", ErrInvalidAnswer, q.ID, value)
		}
		c.toggle(q, s)
		return nil
	}
}

func (c *Collector) toggle(q Question, value string) {
	current := c.responses[q.ID].Choices
	for i, v := range current {
		if v == value {
			next := append(append([]string(nil), current[:i]...), current[i+1:]...)
			c.responses[q.ID] = Answer{Kind: KindMulti, Choices: next}
			return
		}
	}
	if len(current) >= q.MaxChoices {
		return
	}
	next := append(append([]string(nil), current...), value)
	c.responses[q.ID] = Answer{Kind: KindMulti, Choices: next}
}

// SetAll applies a batch of answers in bank order. Slice values for
// multi-select questions are applied as individual toggles.
func (c *Collector) SetAll(answers map[string]any) error {
	for id := range answers {
		if _, ok := c.bank.Lookup(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
		}
	}
	for _, q := range c.bank.questions {
		v, ok := answers[q.ID]
		if !ok {
			continue
		}
		if q.Kind != KindMulti {
			if err := c.SetAnswer(q.ID, v); err != nil {
				return err
			}
			continue
		}
		values, err := stringList(v)
		if err != nil {
			return fmt.Errorf("%w: question %q: %v", ErrInvalidAnswer, q.ID, err)
		}
		for _, s := range uniqueStrings(values) {
			if err := c.SetAnswer(q.ID, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Answered reports whether the question has a usable answer. An empty
// multi-select set does not count.
func (c *Collector) Answered(questionID string) bool {
	a, ok := c.responses[questionID]
	if !ok {
		return false
	}
	if a.Kind == KindMulti {
		return len(a.Choices) > 0
	}
	return true
}

// IsComplete reports whether every question in the bank is answered.
func (c *Collector) IsComplete() bool {
	for _, q := range c.bank.questions {
		if !c.Answered(q.ID) {
			return false
		}
	}
	return true
}

// Missing returns the ids of unanswered questions in bank order.
func (c *Collector) Missing() []string {
	var out []string
	for _, q := range c.bank.questions {
		if !c.Answered(q.ID) {
			out = append(out, q.ID)
		}
	}
	return out
}

// Clear drops every answer.
func (c *Collector) Clear() {
	c.responses = make(ResponseSet)
}

// Responses returns a copy of the current answers.
func (c *Collector) Responses() ResponseSet {
	return c.responses.Clone()
}

// Restore replaces the current answers with rs after checking each entry
// against the bank.
func (c *Collector) Restore(rs ResponseSet) error {
	next := make(ResponseSet, len(rs))
	for id, a := range rs {
		q, ok := c.bank.Lookup(id)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
		}
		if a.Kind != q.Kind {
			return fmt.Errorf("%w: question %q: kind %q, want %q", ErrInvalidAnswer, id, a.Kind, q.Kind)
		}
		switch q.Kind {
		case KindSingle:
			if !q.HasOption(a.Choice) {
				return fmt.Errorf("%w: question %q: %q is not an option", ErrInvalidAnswer, id, a.Choice)
			}
		case KindMulti:
			if len(a.Choices) > q.MaxChoices {
				return fmt.Errorf("%w: question %q: %d choices exceeds %d", ErrInvalidAnswer, id, len(a.Choices), q.MaxChoices)
			}
			seen := make(map[string]bool, len(a.Choices))
			for _, v := range a.Choices {
				if !q.HasOption(v) {
					return fmt.Errorf("%w: question %q: %q is not an option", ErrInvalidAnswer, id, v)
				}
				if seen[v] {
					return fmt.Errorf("%w: question %q: %q chosen twice", ErrInvalidAnswer, id, v)
				}
				seen[v] = true
			}
		}
		next[id] = a
	}
	c.responses = next.Clone()
	return nil
}

func parseBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true":
			return true, nil
		case "no", "n", "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%v is not yes/no", v)
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of option values, got %T", v)
}

// uniqueStrings drops repeats, keeping first-seen order.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
