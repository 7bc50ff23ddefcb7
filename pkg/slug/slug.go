// Package slug turns heading text into anchor-safe identifiers.
//
// The same function is used for table-of-contents links, section lookup and
// the id attribute assigned to rendered headings, so a link to #slug always
// resolves to the heading it was generated from.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// Fallback is returned when no usable characters remain.
	Fallback = "heading"
	// DigitPrefix is prepended to slugs that would start with a digit.
	DigitPrefix = "h-"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
)

// Make returns the slug for text. It is pure and total.
// Identical titles produce identical slugs; callers must not assume uniqueness within a document.
func Make(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = disallowedChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return Fallback
	}
	if unicode.IsDigit(rune(s[0])) {
		return DigitPrefix + s
	}
	return s
}

// IsValid reports whether s is already a slug, i.e. Make(s) == s.
func IsValid(s string) bool {
	return s != "" && Make(s) == s
}
