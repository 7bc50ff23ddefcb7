package markdown

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// TreeOptions controls WriteOutlineTree output.
type TreeOptions struct {
	ShowLevels bool                 // Prefix entries with "H2", "H3", ...
	Annotate   func(Heading) string // Optional suffix per entry, e.g. line counts
}

// WriteOutlineTree writes a text tree of the outline, headed by title.
func WriteOutlineTree(w io.Writer, title string, root *OutlineNode, opts TreeOptions, log *logrus.Entry) error {
	writer := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(writer, "Outline for: %s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s\n\n", strings.Repeat("=", 13+len(title))); err != nil {
		return err
	}

	if root == nil || len(root.Children) == 0 {
		if _, err := fmt.Fprintln(writer, "(no headings)"); err != nil {
			return err
		}
		return writer.Flush()
	}

	if err := writeOutlineLevel(writer, root.Children, "", opts, log); err != nil {
		if log != nil {
			log.Errorf("Error writing outline for '%s': %v", title, err)
		}
		return fmt.Errorf("error writing outline for '%s': %w", title, err)
	}
	return writer.Flush()
}

func writeOutlineLevel(writer io.Writer, nodes []*OutlineNode, currentIndent string, opts TreeOptions, log *logrus.Entry) error {
	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := entryPrefix
		if isLast {
			connector = lastEntryPrefix
		}

		label := node.Heading.Title
		if opts.ShowLevels {
			label = fmt.Sprintf("H%d %s", node.Heading.Level, label)
		}
		if opts.Annotate != nil {
			if suffix := opts.Annotate(node.Heading); suffix != "" {
				label += " " + suffix
			}
		}

		if log != nil {
			log.Debugf("Writing outline entry: %s%s%s", currentIndent, connector, label)
		}
		if _, err := fmt.Fprintf(writer, "%s%s%s\n", currentIndent, connector, label); err != nil {
			return err
		}

		if len(node.Children) > 0 {
			nextIndent := currentIndent + verticalLine
			if isLast {
				nextIndent = currentIndent + indentPrefix
			}
			if err := writeOutlineLevel(writer, node.Children, nextIndent, opts, log); err != nil {
				return err
			}
		}
	}
	return nil
}
