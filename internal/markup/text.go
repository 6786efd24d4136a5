// Package markup reduces HTML message bodies to plain text.
package markup

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Converter turns raw markup into display text.
type Converter interface {
	PlainText(raw string) string
}

// Stripper removes every tag using a strict bluemonday policy.
type Stripper struct {
	policy *bluemonday.Policy
}

// NewStripper returns a Stripper. Tags are replaced by whitespace so words
// on either side of a block element stay apart.
func NewStripper() *Stripper {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	return &Stripper{policy: policy}
}

// PlainText strips tags, resolves entities and collapses whitespace runs.
func (s *Stripper) PlainText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}
