package markdown

import (
	"fmt"
	"strings"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// Section is the contiguous block of lines owned by one navigation-level heading.
// It runs from the heading line up to, but not including, the next heading whose
// level is equal to or shallower than the navigation level.
type Section struct {
	Heading   Heading `json:"heading"`
	StartLine int     `json:"startLine"` // Heading line, inclusive
	EndLine   int     `json:"endLine"`   // Exclusive
	Text      string  `json:"text"`
}

// LineCount is the number of source lines in the section, heading included.
func (s Section) LineCount() int {
	return s.EndLine - s.StartLine
}

// PartitionSections splits content into the sections defined by headings at level.
// Text before the first such heading belongs to no section. Topic exclusions are
// not applied here: an excluded heading is still addressable by its slug.
func PartitionSections(content string, level int) []Section {
	if content == "" {
		return nil
	}
	lines := splitLines(content)
	headings := ExtractHeadings(content)

	var sections []Section
	for i, h := range headings {
		if h.Level != level {
			continue
		}
		end := len(lines)
		for _, next := range headings[i+1:] {
			if next.Level <= level {
				end = next.Line
				break
			}
		}
		sections = append(sections, Section{
			Heading:   h,
			StartLine: h.Line,
			EndLine:   end,
			Text:      strings.Join(lines[h.Line:end], "\n"),
		})
	}
	return sections
}

// ExtractSection returns the text of the first section at level whose heading slug equals sectionID.
// Duplicate titles share a slug, so later sections with the same title are unreachable by id.
func ExtractSection(content, sectionID string, level int) (string, error) {
	sec, err := FindSection(content, sectionID, level)
	if err != nil {
		return "", err
	}
	return sec.Text, nil
}

// FindSection is ExtractSection returning the full section record.
func FindSection(content, sectionID string, level int) (Section, error) {
	for _, sec := range PartitionSections(content, level) {
		if sec.Heading.Slug == sectionID {
			return sec, nil
		}
	}
	return Section{}, fmt.Errorf("%w: section %q at level %d", utils.ErrNotFound, sectionID, level)
}
