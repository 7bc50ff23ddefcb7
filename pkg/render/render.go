// Package render turns Markdown into HTML whose heading ids are the same
// slugs the navigation engine computes, so "#slug" links always resolve.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/slug"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// Options controls the Markdown renderer.
type Options struct {
	AllowRawHTML bool // Pass raw HTML blocks through instead of omitting them
}

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer with GitHub-flavoured extensions.
func New(opts Options) *Renderer {
	rendererOptions := []goldmark.Option{}
	if opts.AllowRawHTML {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(ghhtml.WithUnsafe()))
	}

	return &Renderer{
		md: goldmark.New(append([]goldmark.Option{
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithASTTransformers(util.Prioritized(slugIDTransformer{}, 100)),
			),
		}, rendererOptions...)...),
	}
}

// HTML renders content.
func (r *Renderer) HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: rendering markdown: %w", utils.ErrParsing, err)
	}
	return buf.String(), nil
}

// slugIDTransformer sets every heading's id attribute from its source line,
// using the same title extraction and slug rules as package markdown.
type slugIDTransformer struct{}

func (slugIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading.SetAttributeString("id", []byte(headingSlug(heading, source)))
		return ast.WalkSkipChildren, nil
	})
}

func headingSlug(heading *ast.Heading, source []byte) string {
	lines := heading.Lines()
	if lines.Len() == 0 {
		return slug.Make("")
	}

	seg := lines.At(0)
	if _, title, ok := markdown.ParseHeadingLine(sourceLine(source, seg.Start)); ok {
		return slug.Make(title)
	}

	// Setext or indented headings: fall back to the parsed heading text
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		s := lines.At(i)
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(s.Value(source))
	}
	return slug.Make(buf.String())
}

// sourceLine returns the full physical line containing offset, without its newline.
func sourceLine(source []byte, offset int) string {
	if offset > len(source) {
		offset = len(source)
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	end := bytes.IndexByte(source[offset:], '\n')
	if end < 0 {
		return string(source[start:])
	}
	return string(source[start : offset+end])
}
