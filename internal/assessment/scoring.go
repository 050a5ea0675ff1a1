package assessment

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidBands is returned when tier bands do not partition the score range.
var ErrInvalidBands = errors.New("invalid score bands")

// Tier names a band of scores.
type Tier string

// Flag names a derived boolean outcome of a flagged assessment.
type Flag string

// ResultKind distinguishes additive tiered results from flag-derived ones.
type ResultKind string

const (
	ResultTiered  ResultKind = "tiered"
	ResultFlagged ResultKind = "flagged"
)

// Band is an inclusive score range [Min, Max] mapped to a tier.
type Band struct {
	Tier Tier `json:"tier" yaml:"tier"`
	Min  int  `json:"min" yaml:"min"`
	Max  int  `json:"max" yaml:"max"`
}

// Bands is an ordered, validated partition of [0, max].
type Bands []Band

// NewBands sorts bands by Min and checks that together they cover [0, max]
// with no gap or overlap, and that every tier appears once.
func NewBands(max int, bands ...Band) (Bands, error) {
	if max < 0 {
		return nil, fmt.Errorf("%w: negative max score %d", ErrInvalidBands, max)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	out := make(Bands, len(bands))
	copy(out, bands)
	sort.Slice(out, func(i, j int) bool { return out[i].Min < out[j].Min })

	tiers := make(map[Tier]bool, len(out))
	next := 0
	for _, b := range out {
		if b.Tier == "" {
			return nil, fmt.Errorf("%w: band [%d, %d] has no tier", ErrInvalidBands, b.Min, b.Max)
		}
		if tiers[b.Tier] {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidBands, b.Tier)
		}
		tiers[b.Tier] = true
		if b.Min > b.Max {
			return nil, fmt.Errorf("%w: tier %q min %d > max %d", ErrInvalidBands, b.Tier, b.Min, b.Max)
		}
		if b.Min < next {
			return nil, fmt.Errorf("%w: tier %q overlaps at %d", ErrInvalidBands, b.Tier, b.Min)
		}
		if b.Min > next {
			return nil, fmt.Errorf("%w: scores %d..%d have no tier", ErrInvalidBands, next, b.Min-1)
		}
		next = b.Max + 1
	}
	if next != max+1 {
		if next > max+1 {
			return nil, fmt.Errorf("%w: bands extend past max score %d", ErrInvalidBands, max)
		}
		return nil, fmt.Errorf("%w: scores %d..%d have no tier", ErrInvalidBands, next, max)
	}
	return out, nil
}

// MustNewBands is NewBands for built-in assessments.
func MustNewBands(max int, bands ...Band) Bands {
	b, err := NewBands(max, bands...)
	if err != nil {
		panic(err)
	}
	return b
}

// TierFor returns the tier whose band contains score. The second result is
// false only for scores outside the validated range.
func (bs Bands) TierFor(score int) (Tier, bool) {
	for _, b := range bs {
		if score >= b.Min && score <= b.Max {
			return b.Tier, true
		}
	}
	return "", false
}

// Tiers returns the tiers in ascending score order.
func (bs Bands) Tiers() []Tier {
	out := make([]Tier, len(bs))
	for i, b := range bs {
		out[i] = b.Tier
	}
	return out
}

// Result is the outcome of scoring one response set.
type Result struct {
	AssessmentID string     `json:"assessment_id"`
	Kind         ResultKind `json:"kind"`
	Score        int        `json:"score"`
	MaxScore     int        `json:"max_score"`
	Tier         Tier       `json:"tier,omitempty"`
	Flags        []Flag     `json:"flags,omitempty"`
}

// HasFlag reports whether f was triggered.
func (r Result) HasFlag(f Flag) bool {
	for _, got := range r.Flags {
		if got == f {
			return true
		}
	}
	return false
}

// AdditiveScore counts binary questions of bank answered true. Answers for
// ids outside the bank and missing answers are ignored.
func AdditiveScore(bank *Bank, rs ResponseSet) int {
	score := 0
	for _, q := range bank.questions {
		if q.Kind == KindBinary && rs.Bool(q.ID) {
			score++
		}
	}
	return score
}
