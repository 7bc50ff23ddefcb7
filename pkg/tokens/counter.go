// Package tokens estimates LLM token counts for documents and sections.
package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
)

const (
	DefaultEncoding = "cl100k_base" // Used when no encoding is configured
	Unavailable     = -1            // Count reported without a working codec
)

// Counter counts tokens with one tiktoken codec. A nil *Counter is valid and
// reports -1 for every count, meaning "not available".
type Counter struct {
	codec    tokenizer.Codec
	encoding string
}

// NewCounter loads the codec for encoding. Common encodings: "cl100k_base" (GPT-4),
// "o200k_base" (GPT-4o), "p50k_base" (GPT-3). Unknown names fall back to cl100k_base.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	var enc tokenizer.Encoding
	switch encoding {
	case "cl100k_base":
		enc = tokenizer.Cl100kBase
	case "p50k_base":
		enc = tokenizer.P50kBase
	case "p50k_edit":
		enc = tokenizer.P50kEdit
	case "r50k_base":
		enc = tokenizer.R50kBase
	case "o200k_base":
		enc = tokenizer.O200kBase
	default:
		encoding = DefaultEncoding
		enc = tokenizer.Cl100kBase
	}

	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer %s: %w", encoding, err)
	}
	return &Counter{codec: codec, encoding: encoding}, nil
}

// Encoding is the name of the loaded encoding.
func (c *Counter) Encoding() string {
	if c == nil {
		return ""
	}
	return c.encoding
}

// Count returns the token count for text, or Unavailable.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return Unavailable
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return Unavailable
	}
	return len(ids)
}

// SectionStats describes one navigation-level section.
type SectionStats struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Lines  int    `json:"lines"`
	Tokens int    `json:"tokens"` // -1 when no counter is available
}

// DocumentStats describes a document and each of its sections.
type DocumentStats struct {
	Lines    int            `json:"lines"`
	Headings int            `json:"headings"`
	Tokens   int            `json:"tokens"`
	Sections []SectionStats `json:"sections"`
}

// Stats computes line and token statistics for content at the navigation level.
func (c *Counter) Stats(content string, level int) DocumentStats {
	stats := DocumentStats{
		Lines:    lineCount(content),
		Headings: len(markdown.ExtractHeadings(content)),
		Tokens:   c.Count(content),
		Sections: make([]SectionStats, 0),
	}
	for _, sec := range markdown.PartitionSections(content, level) {
		stats.Sections = append(stats.Sections, SectionStats{
			ID:     sec.Heading.Slug,
			Title:  sec.Heading.Title,
			Lines:  sec.LineCount(),
			Tokens: c.Count(sec.Text),
		})
	}
	return stats
}

// ForSection returns the stats entry for sectionID, if present.
func (s DocumentStats) ForSection(sectionID string) (SectionStats, bool) {
	for _, sec := range s.Sections {
		if sec.ID == sectionID {
			return sec, true
		}
	}
	return SectionStats{}, false
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			n++
		}
	}
	return n
}
