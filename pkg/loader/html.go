package loader

import (
	"bytes"
	"fmt"
	"mime"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// isHTML decides from the Content-Type header, or failing that the source extension.
func isHTML(contentType, source string) bool {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediaType == "text/html" || mediaType == "application/xhtml+xml"
		}
	}
	ext := strings.ToLower(path.Ext(strings.SplitN(source, "?", 2)[0]))
	return ext == ".html" || ext == ".htm"
}

// HTMLToMarkdown converts an HTML page to Markdown. With a selector only the
// first match is converted; without one the body is.
func HTMLToMarkdown(page []byte, selector string) (string, error) {
	doc, err := parseHTML(page)
	if err != nil {
		return "", err
	}
	return convertDocument(doc, selector, false)
}

// convertAuto converts a page using the selector the detector picks for site.
// A detected selector that matches nothing falls back to the body.
func (l *Loader) convertAuto(page []byte, site string) (string, error) {
	doc, err := parseHTML(page)
	if err != nil {
		return "", err
	}
	result := l.detector.Detect(doc, site)
	return convertDocument(doc, result.Selector, true)
}

func parseHTML(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err)
	}
	return doc, nil
}

func convertDocument(doc *goquery.Document, selector string, lenient bool) (string, error) {
	var content *goquery.Selection
	if selector != "" {
		content = doc.Find(selector)
		if content.Length() == 0 && !lenient {
			return "", fmt.Errorf("%w: selector '%s'", utils.ErrContentSelector, selector)
		}
	}
	if content == nil || content.Length() == 0 {
		content = doc.Find("body")
		if content.Length() == 0 {
			content = doc.Selection
		}
	}
	content = content.First().Clone()
	cleanupHTML(content)

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrMarkdownConversion, err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}

// cleanupHTML drops heading permalink anchors and similar chrome that would
// otherwise end up inside heading titles.
func cleanupHTML(content *goquery.Selection) {
	content.Find("script, style, nav").Remove()
	content.Find("a.headerlink, a.permalink, a.edit-on-github").Remove()
	content.Find("a[title='Permalink to this heading'], a[title='Link to this heading']").Remove()

	content.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		if text == "¶" || text == "#" || (text == "" && strings.HasPrefix(href, "#")) {
			s.Remove()
		}
	})
}
