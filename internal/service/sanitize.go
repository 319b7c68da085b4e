package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer strips markup from model output before it is stored.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes every tag and returns plain text. bluemonday escapes
// entities, so they are decoded once to keep "salt & pepper" readable.
func (s *TextSanitizer) Clean(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
