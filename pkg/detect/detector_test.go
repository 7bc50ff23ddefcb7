package detect

import (
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector() *Detector {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewDetector(logrus.NewEntry(log))
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestIsAutoSelector(t *testing.T) {
	tests := []struct {
		selector string
		want     bool
	}{
		{"auto", true},
		{"AUTO", true},
		{" Auto ", true},
		{"body", false},
		{"", false},
		{"automatic", false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAutoSelector(tt.selector))
		})
	}
}

func TestDetect_Frameworks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Framework
	}{
		{
			name: "docusaurus attribute",
			html: `<html data-docusaurus><body><article class="theme-doc-markdown"><h1>Hi</h1></article></body></html>`,
			want: FrameworkDocusaurus,
		},
		{
			name: "mkdocs material",
			html: `<html><body><div class="md-content" data-md-component="content"><article class="md-content__inner"><h1>Hi</h1></article></div></body></html>`,
			want: FrameworkMkDocs,
		},
		{
			name: "readthedocs before sphinx",
			html: `<html><body><div class="wy-nav-content"><div class="rst-content"><h1>Hi</h1></div></div><div class="sphinxsidebar"></div></body></html>`,
			want: FrameworkReadTheDocs,
		},
		{
			name: "sphinx script",
			html: `<html><head><script src="_static/sphinx_highlight.js"></script></head><body><div class="body"><h1>Hi</h1></div></body></html>`,
			want: FrameworkSphinx,
		},
		{
			name: "gitbook class prefix",
			html: `<html><body><div class="gitbook-root"><section class="normal markdown-section"><h1>Hi</h1></section></div></body></html>`,
			want: FrameworkGitBook,
		},
		{
			name: "plain page",
			html: `<html><body><main><h1>Hi</h1></main></body></html>`,
			want: FrameworkUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestDetector().Detect(parse(t, tt.html), "")
			assert.Equal(t, tt.want, result.Framework)
			assert.Equal(t, SelectorFor(tt.want), result.Selector)
		})
	}
}

func TestDetect_CachesPerSite(t *testing.T) {
	d := newTestDetector()

	first := d.Detect(parse(t, `<html data-docusaurus><body></body></html>`), "docs.example.com")
	assert.Equal(t, FrameworkDocusaurus, first.Framework)

	// A different page from the same site reuses the first result.
	second := d.Detect(parse(t, `<html><body><p>plain</p></body></html>`), "docs.example.com")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.Cached())

	d.Detect(parse(t, `<html><body></body></html>`), "")
	assert.Equal(t, 1, d.Cached(), "empty site is not cached")
}

func TestSelectorFor_Unknown(t *testing.T) {
	assert.Empty(t, SelectorFor(FrameworkUnknown))
}
