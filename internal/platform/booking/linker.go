// Package booking builds links to the external scheduling provider.
package booking

import (
	"fmt"
	"net/url"

	"github.com/clinic/clinic/internal/assessment"
)

// Linker builds booking URLs tagged with the assessment that produced them.
// The scheduling provider is opaque; nothing is read back.
type Linker struct {
	base *url.URL
}

// NewLinker parses base. A relative or unparsable base is a configuration error.
func NewLinker(base string) (*Linker, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse booking url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("booking url must be http or https, got %q", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("booking url has no host: %q", base)
	}
	return &Linker{base: u}, nil
}

// BookingURL implements assessment.BookingLinker.
func (l *Linker) BookingURL(assessmentID string, tier assessment.Tier) string {
	u := *l.base
	q := u.Query()
	q.Set("utm_source", "assessment")
	if assessmentID != "" {
		q.Set("utm_campaign", assessmentID)
	}
	if tier != "" {
		q.Set("tier", string(tier))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

var _ assessment.BookingLinker = (*Linker)(nil)
