// Package sanitize cleans user supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer holds the two policies the shop uses. Policies are safe for
// concurrent use once built.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// New builds a Sanitizer. Rich text keeps the UGC policy's formatting tags
// and forces rel="nofollow noopener" with target="_blank" on links.
func New() *Sanitizer {
	rich := bluemonday.UGCPolicy()
	rich.RequireNoFollowOnLinks(true)
	rich.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		rich:  rich,
		plain: bluemonday.StrictPolicy(),
	}
}

// RichText sanitizes HTML such as product descriptions.
func (s *Sanitizer) RichText(in string) string {
	return strings.TrimSpace(s.rich.Sanitize(in))
}

// PlainText strips every tag from free text such as order notes and
// cancellation reasons. Entities the policy escapes are decoded again so the
// stored value reads the way the customer typed it.
func (s *Sanitizer) PlainText(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(in)))
}

// PlainTextPtr applies PlainText to an optional value.
func (s *Sanitizer) PlainTextPtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.PlainText(*in)
	return &out
}
