package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBank is returned when a question bank definition is malformed.
// It is a configuration error: callers are expected to refuse to start.
var ErrInvalidBank = errors.New("invalid question bank")

// Kind is the answer domain of a question.
type Kind string

const (
	KindBinary Kind = "binary"
	KindSingle Kind = "single_select"
	KindMulti  Kind = "multi_select"
)

var validKinds = map[Kind]bool{
	KindBinary: true,
	KindSingle: true,
	KindMulti:  true,
}

// Option is one selectable value of a select question.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Question is a single item of a QuestionBank.
type Question struct {
	ID         string   `json:"id" yaml:"id"`
	Prompt     string   `json:"prompt" yaml:"prompt"`
	Help       string   `json:"help,omitempty" yaml:"help"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Options    []Option `json:"options,omitempty" yaml:"options"`
	MaxChoices int      `json:"max_choices,omitempty" yaml:"max_choices"`
}

// HasOption reports whether value is one of the question's option values.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// OptionLabel returns the display label for value, or value itself when
// the option has no label.
func (q Question) OptionLabel(value string) string {
	for _, o := range q.Options {
		if o.Value == value && o.Label != "" {
			return o.Label
		}
	}
	return value
}

func (q Question) clone() Question {
	out := q
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		copy(out.Options, q.Options)
	}
	return out
}

func (q Question) validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("empty id")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %q: empty prompt", q.ID)
	}
	if !validKinds[q.Kind] {
		return fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
	}
	if q.Kind == KindBinary {
		if len(q.Options) > 0 {
			return fmt.Errorf("question %q: binary questions take no options", q.ID)
		}
		return nil
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %q: no options", q.ID)
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o.Value) == "" {
			return fmt.Errorf("question %q: empty option value", q.ID)
		}
		if seen[o.Value] {
			return fmt.Errorf("question %q: duplicate option %q", q.ID, o.Value)
		}
		seen[o.Value] = true
	}
	if q.Kind == KindMulti && (q.MaxChoices < 1 || q.MaxChoices > len(q.Options)) {
		return fmt.Errorf("question %q: max_choices %d out of range [1, %d]", q.ID, q.MaxChoices, len(q.Options))
	}
	if q.Kind == KindSingle && q.MaxChoices != 0 {
		return fmt.Errorf("question %q: max_choices only applies to multi_select", q.ID)
	}
	return nil
}

// Bank is an ordered, immutable list of questions for one assessment.
type Bank struct {
	id        string
	title     string
	questions []Question
	index     map[string]int
}

// NewBank validates questions and returns a Bank. The order of questions is
// preserved exactly.
func NewBank(id, title string, questions []Question) (*Bank, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty bank id", ErrInvalidBank)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: bank %q has no questions", ErrInvalidBank, id)
	}

	b := &Bank{
		id:        id,
		title:     title,
		questions: make([]Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if err := q.validate(); err != nil {
			return nil, fmt.Errorf("%w: bank %q item %d: %v", ErrInvalidBank, id, i, err)
		}
		if _, dup := b.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: bank %q: duplicate question id %q", ErrInvalidBank, id, q.ID)
		}
		b.index[q.ID] = i
		b.questions = append(b.questions, q.clone())
	}
	return b, nil
}

// MustNewBank is NewBank for built-in banks; it panics on error.
func MustNewBank(id, title string, questions []Question) *Bank {
	b, err := NewBank(id, title, questions)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Bank) ID() string    { return b.id }
func (b *Bank) Title() string { return b.title }
func (b *Bank) Len() int      { return len(b.questions) }

// Questions returns the questions in presentation order. The returned slice
// is a copy; mutating it does not affect the bank.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// At returns the question at position i.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i].clone(), true
}

// Lookup returns the question with the given id.
func (b *Bank) Lookup(id string) (Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i].clone(), true
}

// Position returns the index of the question with the given id, or -1.
func (b *Bank) Position(id string) int {
	i, ok := b.index[id]
	if !ok {
		return -1
	}
	return i
}

// CountKind returns how many questions have the given kind.
func (b *Bank) CountKind(k Kind) int {
	n := 0
	for _, q := range b.questions {
		if q.Kind == k {
			n++
		}
	}
	return n
}

func (b *Bank) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Questions []Question `json:"questions"`
	}{b.id, b.title, b.questions})
}
