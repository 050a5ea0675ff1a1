// Package assessment implements self-scored screening questionnaires:
// question banks, answer collection with completion gating, deterministic
// scoring and interpretation.
package assessment

import (
	"fmt"
)

// ActionKind identifies what a recommended next step does.
type ActionKind string

const (
	ActionBook       ActionKind = "book"
	ActionLearn      ActionKind = "learn"
	ActionAssessment ActionKind = "assessment"
	ActionRestart    ActionKind = "restart"
)

// Action is a navigation intent offered with a result. Target is an opaque
// URL for book and learn, or an assessment id for assessment.
type Action struct {
	Kind   ActionKind `json:"kind" yaml:"kind"`
	Label  string     `json:"label" yaml:"label"`
	Target string     `json:"target,omitempty" yaml:"target"`
}

// Interpretation is the static display entry for one tier or flag.
// Narrative is Markdown.
type Interpretation struct {
	Key       string `json:"key" yaml:"key"`
	Label     string `json:"label" yaml:"label"`
	Narrative string `json:"narrative" yaml:"narrative"`
	Action    Action `json:"action" yaml:"action"`
}

// Assessment is one scored questionnaire. Evaluate must be total: any
// response set, including a partial one, yields a result.
type Assessment interface {
	ID() string
	Title() string
	Kind() ResultKind
	Bank() *Bank
	Evaluate(rs ResponseSet) Result
	Interpret(r Result) []Interpretation
}

// Tiered is an additive binary assessment: the score is the number of
// affirmative answers and the tier comes from inclusive bands.
type Tiered struct {
	bank            *Bank
	bands           Bands
	interpretations map[Tier]Interpretation
}

// NewTiered checks that bands partition [0, N] for the bank's N binary
// questions and that every tier has an interpretation.
func NewTiered(bank *Bank, bands []Band, interpretations map[Tier]Interpretation) (*Tiered, error) {
	if bank == nil {
		return nil, fmt.Errorf("%w: nil bank", ErrInvalidBank)
	}
	n := bank.CountKind(KindBinary)
	if n == 0 {
		return nil, fmt.Errorf("%w: bank %q has no binary questions to score", ErrInvalidBank, bank.ID())
	}
	validated, err := NewBands(n, bands...)
	if err != nil {
		return nil, fmt.Errorf("bank %q: %w", bank.ID(), err)
	}
	interp := make(map[Tier]Interpretation, len(interpretations))
	for _, b := range validated {
		entry, ok := interpretations[b.Tier]
		if !ok {
			return nil, fmt.Errorf("bank %q: tier %q has no interpretation", bank.ID(), b.Tier)
		}
		if entry.Key == "" {
			entry.Key = string(b.Tier)
		}
		interp[b.Tier] = entry
	}
	return &Tiered{bank: bank, bands: validated, interpretations: interp}, nil
}

// MustNewTiered is NewTiered for built-in assessments.
func MustNewTiered(bank *Bank, bands []Band, interpretations map[Tier]Interpretation) *Tiered {
	t, err := NewTiered(bank, bands, interpretations)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tiered) ID() string       { return t.bank.ID() }
func (t *Tiered) Title() string    { return t.bank.Title() }
func (t *Tiered) Kind() ResultKind { return ResultTiered }
func (t *Tiered) Bank() *Bank      { return t.bank }
func (t *Tiered) Bands() Bands     { return append(Bands(nil), t.bands...) }

func (t *Tiered) Evaluate(rs ResponseSet) Result {
	score := AdditiveScore(t.bank, rs)
	tier, _ := t.bands.TierFor(score)
	return Result{
		AssessmentID: t.bank.ID(),
		Kind:         ResultTiered,
		Score:        score,
		MaxScore:     t.bank.CountKind(KindBinary),
		Tier:         tier,
	}
}

func (t *Tiered) Interpret(r Result) []Interpretation {
	entry, ok := t.interpretations[r.Tier]
	if !ok {
		return nil
	}
	return []Interpretation{entry}
}
