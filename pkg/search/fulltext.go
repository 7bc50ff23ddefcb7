package search

import (
	"strings"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
)

const (
	DefaultMaxResults = 10
	MaxResultsLimit   = 100
	snippetLength     = 150
)

// Hit is one section whose title or text contains the query.
// SectionID is empty for matches in text before the first section.
type Hit struct {
	DocumentID    string `json:"document_id"`
	DocumentName  string `json:"document_name"`
	SectionID     string `json:"section_id,omitempty"`
	SectionTitle  string `json:"section_title,omitempty"`
	MatchLocation string `json:"match_location"` // "name", "title" or "content"
	Snippet       string `json:"snippet"`
}

// ClampMaxResults maps a requested result count into 1..MaxResultsLimit.
func ClampMaxResults(n int) int {
	if n <= 0 {
		return DefaultMaxResults
	}
	if n > MaxResultsLimit {
		return MaxResultsLimit
	}
	return n
}

// Sections scans documents in order and returns up to maxResults hits.
// A document whose name matches yields one hit; otherwise each section at
// level is checked by title, then by content.
func Sections(docs []models.Document, level int, query string, maxResults int) []Hit {
	hits := make([]Hit, 0)
	if strings.TrimSpace(query) == "" {
		return hits
	}
	maxResults = ClampMaxResults(maxResults)

	for _, doc := range docs {
		if len(hits) >= maxResults {
			break
		}
		if Matches(doc.Name, query) {
			hits = append(hits, Hit{
				DocumentID:    doc.ID,
				DocumentName:  doc.Name,
				MatchLocation: "name",
				Snippet:       extractSnippet(doc.Content, query, snippetLength),
			})
			continue
		}

		sections := markdown.PartitionSections(doc.Content, level)
		if len(sections) == 0 {
			if Matches(doc.Content, query) {
				hits = append(hits, Hit{
					DocumentID:    doc.ID,
					DocumentName:  doc.Name,
					MatchLocation: "content",
					Snippet:       extractSnippet(doc.Content, query, snippetLength),
				})
			}
			continue
		}

		for _, sec := range sections {
			if len(hits) >= maxResults {
				break
			}
			location := ""
			switch {
			case Matches(sec.Heading.Title, query):
				location = "title"
			case Matches(sec.Text, query):
				location = "content"
			default:
				continue
			}
			hits = append(hits, Hit{
				DocumentID:    doc.ID,
				DocumentName:  doc.Name,
				SectionID:     sec.Heading.Slug,
				SectionTitle:  sec.Heading.Title,
				MatchLocation: location,
				Snippet:       extractSnippet(sec.Text, query, snippetLength),
			})
		}
	}
	return hits
}

// extractSnippet extracts a snippet around the query match, slicing on rune
// boundaries so multi-byte UTF-8 characters are never split.
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	queryRunes := []rune(strings.ToLower(query))
	contentLowerRunes := []rune(strings.ToLower(content))

	idx := -1
	for i := 0; i <= len(contentLowerRunes)-len(queryRunes); i++ {
		if string(contentLowerRunes[i:i+len(queryRunes)]) == string(queryRunes) {
			idx = i
			break
		}
	}

	if idx == -1 || idx >= len(runes) {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return content
	}

	start := max(idx-maxLen/2, 0)
	end := min(idx+len(queryRunes)+maxLen/2, len(runes))

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}
