// Package markdown derives navigation structure from raw Markdown text:
// heading records, addressable sections and the outline tree.
//
// Heading detection is deliberately line-based: a line is a heading when it
// starts with one to six '#' characters followed by whitespace and a non-empty
// title. Fenced code blocks are not tracked, so a '#' line inside a fence is
// still reported as a heading. Rendering goes through a real Markdown parser
// (see package render) which does understand fences.
package markdown

import (
	"strings"

	"github.com/Sriram-PR/doc-navigator/pkg/slug"
)

const (
	MinLevel = 1
	MaxLevel = 6

	// DefaultNavigationLevel is the heading depth that defines sections.
	DefaultNavigationLevel = 2
)

// DefaultTopicExclusions are heading titles that never become navigation
// entries, matched case-insensitively as substrings.
var DefaultTopicExclusions = []string{"table of contents", "from basic to advanced"}

// Heading is one heading occurrence inside a document.
type Heading struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Line  int    `json:"line"` // Zero-based line index in the source
}

// ParseHeadingLine reports whether line is a heading and returns its level and trimmed title.
// A trailing carriage return is ignored so CRLF documents behave like LF ones.
func ParseHeadingLine(line string) (level int, title string, ok bool) {
	line = strings.TrimSuffix(line, "\r")

	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < MinLevel || level > MaxLevel || level == len(line) {
		return 0, "", false
	}
	if !isHeadingSpace(line[level]) {
		return 0, "", false
	}

	title = strings.TrimSpace(line[level:])
	if title == "" {
		return 0, "", false
	}
	return level, title, true
}

func isHeadingSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

// splitLines splits content on '\n'. Carriage returns stay on the line so
// extracted text reproduces the source byte for byte.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// ExtractHeadings returns every heading in content, in source order.
func ExtractHeadings(content string) []Heading {
	if content == "" {
		return nil
	}

	var headings []Heading
	for i, line := range splitLines(content) {
		level, title, ok := ParseHeadingLine(line)
		if !ok {
			continue
		}
		headings = append(headings, Heading{
			Level: level,
			Title: title,
			Slug:  slug.Make(title),
			Line:  i,
		})
	}
	return headings
}

// ExtractHeadingsAtLevel returns only the headings of the given level, in source order.
func ExtractHeadingsAtLevel(content string, level int) []Heading {
	var filtered []Heading
	for _, h := range ExtractHeadings(content) {
		if h.Level == level {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// ExtractTopics returns the navigation entries of a document: headings at the
// navigation level whose titles do not contain any of the exclusions.
// A nil exclusions slice means DefaultTopicExclusions; pass an empty slice to keep everything.
func ExtractTopics(content string, level int, exclusions []string) []Heading {
	if exclusions == nil {
		exclusions = DefaultTopicExclusions
	}

	var topics []Heading
	for _, h := range ExtractHeadingsAtLevel(content, level) {
		if isExcludedTopic(h.Title, exclusions) {
			continue
		}
		topics = append(topics, h)
	}
	return topics
}

func isExcludedTopic(title string, exclusions []string) bool {
	lower := strings.ToLower(title)
	for _, ex := range exclusions {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex != "" && strings.Contains(lower, ex) {
			return true
		}
	}
	return false
}
