package markdown

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

func TestExtractSection_StopsAtNextSibling(t *testing.T) {
	content := "# Title\n## A\ntext1\n## B\ntext2"

	text, err := ExtractSection(content, "a", 2)
	require.NoError(t, err)
	assert.Equal(t, "## A\ntext1", text)

	text, err = ExtractSection(content, "b", 2)
	require.NoError(t, err)
	assert.Equal(t, "## B\ntext2", text)
}

func TestExtractSection_IncludesDeeperHeadings(t *testing.T) {
	content := "## Setup\nintro\n### Linux\napt\n#### Notes\nx\n## Usage\nrun"

	text, err := ExtractSection(content, "setup", 2)

	require.NoError(t, err)
	assert.Equal(t, "## Setup\nintro\n### Linux\napt\n#### Notes\nx", text)
}

// A shallower heading closes a section too. A scanner that stops only at the
// next navigation-level heading would return "## Install\nsteps\n# Part 2\nmore".
func TestExtractSection_StopsAtShallowerHeading(t *testing.T) {
	content := "# Part 1\n## Install\nsteps\n# Part 2\nmore"

	text, err := ExtractSection(content, "install", 2)

	require.NoError(t, err)
	assert.Equal(t, "## Install\nsteps", text)
}

func TestExtractSection_NotFound(t *testing.T) {
	_, err := ExtractSection("## A\ntext", "missing", 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
	assert.Equal(t, utils.CategoryNotFound, utils.CategorizeError(err))
}

func TestExtractSection_WrongLevelIsNotFound(t *testing.T) {
	_, err := ExtractSection("### Deep\ntext", "deep", 2)

	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestExtractSection_DuplicateTitlesFirstWins(t *testing.T) {
	content := "## Notes\nfirst\n## Notes\nsecond"

	text, err := ExtractSection(content, "notes", 2)

	require.NoError(t, err)
	assert.Equal(t, "## Notes\nfirst", text)
}

func TestExtractSection_ExcludedTopicStillAddressable(t *testing.T) {
	content := "## Table of Contents\n- a\n## A\nbody"

	text, err := ExtractSection(content, "table-of-contents", 2)

	require.NoError(t, err)
	assert.Equal(t, "## Table of Contents\n- a", text)
}

func TestExtractSection_RoundTripsSlug(t *testing.T) {
	content := "# Doc\n## What's New? (v2)\nchanges\n## 2024 Roadmap\nplans\n"

	for _, topic := range ExtractTopics(content, 2, nil) {
		text, err := ExtractSection(content, topic.Slug, 2)
		require.NoError(t, err)

		reparsed := ExtractHeadings(text)
		require.NotEmpty(t, reparsed)
		assert.Equal(t, topic.Slug, reparsed[0].Slug)
		assert.Equal(t, 2, reparsed[0].Level)
	}
}

func TestPartitionSections_LineRanges(t *testing.T) {
	content := "preamble\n## A\na1\na2\n## B\nb1"

	sections := PartitionSections(content, 2)

	require.Len(t, sections, 2)
	assert.Equal(t, 1, sections[0].StartLine)
	assert.Equal(t, 4, sections[0].EndLine)
	assert.Equal(t, 3, sections[0].LineCount())
	assert.Equal(t, 4, sections[1].StartLine)
	assert.Equal(t, 6, sections[1].EndLine)
}

func TestPartitionSections_CRLFPreserved(t *testing.T) {
	content := "## A\r\ntext\r\n## B\r\n"

	sections := PartitionSections(content, 2)

	require.Len(t, sections, 2)
	assert.Equal(t, "## A\r\ntext\r", sections[0].Text)
}

func TestPartitionSections_Empty(t *testing.T) {
	assert.Empty(t, PartitionSections("", 2))
	assert.Empty(t, PartitionSections("no headings", 2))
}
