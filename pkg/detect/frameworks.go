package detect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// signature lists the markers of one generator. Any single marker is enough.
type signature struct {
	framework    Framework
	selector     string   // Main-content selector, most specific first
	attributes   []string // Attribute names present on some element
	classes      []string // Class names; a trailing "*" matches by prefix
	scripts      []string // Substrings of a script src
	htmlPatterns []string // Lower-case substrings of the raw page
}

func (s signature) matches(doc *goquery.Document, lowerHTML string) bool {
	for _, attr := range s.attributes {
		if doc.Find("[" + attr + "]").Length() > 0 {
			return true
		}
	}
	for _, class := range s.classes {
		if hasClass(doc, class) {
			return true
		}
	}
	for _, pattern := range s.scripts {
		found := doc.Find("script[src]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			return strings.Contains(src, pattern)
		})
		if found.Length() > 0 {
			return true
		}
	}
	for _, pattern := range s.htmlPatterns {
		if strings.Contains(lowerHTML, pattern) {
			return true
		}
	}
	return false
}

func hasClass(doc *goquery.Document, class string) bool {
	prefix, wildcard := strings.CutSuffix(class, "*")
	if !wildcard {
		return doc.Find("." + class).Length() > 0
	}
	found := doc.Find("[class]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		attr, _ := sel.Attr("class")
		for _, c := range strings.Fields(attr) {
			if strings.HasPrefix(c, prefix) {
				return true
			}
		}
		return false
	})
	return found.Length() > 0
}

// signatures are tried in order. ReadTheDocs precedes Sphinx because RTD
// themes are Sphinx output.
var signatures = []signature{
	{
		framework:    FrameworkDocusaurus,
		selector:     "article[class*='theme-doc'], .theme-doc-markdown, article.markdown, main article",
		attributes:   []string{"data-docusaurus", "data-docusaurus-root-container"},
		classes:      []string{"docusaurus-wrapper", "theme-doc-markdown"},
		htmlPatterns: []string{"__docusaurus", "docusaurus.io"},
	},
	{
		framework:    FrameworkMkDocs,
		selector:     "article.md-content__inner, .md-content article, .md-content",
		attributes:   []string{"data-md-component", "data-md-color-scheme"},
		classes:      []string{"md-content", "md-main"},
		htmlPatterns: []string{"mkdocs", "material for mkdocs"},
	},
	{
		framework:    FrameworkReadTheDocs,
		selector:     ".rst-content, div[role='main'], .document",
		classes:      []string{"rst-content", "wy-nav-content"},
		scripts:      []string{"readthedocs", "rtd"},
		htmlPatterns: []string{"readthedocs.org", "readthedocs.io", "sphinx-rtd-theme"},
	},
	{
		framework:    FrameworkSphinx,
		selector:     "div.body, article.bd-article, div.document, main.bd-main",
		classes:      []string{"sphinxsidebar", "sphinx-tabs"},
		scripts:      []string{"searchindex.js", "_static/sphinx"},
		htmlPatterns: []string{"created using sphinx", "sphinx-doc.org", "_static/alabaster", "_static/pygments"},
	},
	{
		framework:    FrameworkGitBook,
		selector:     "section.normal.markdown-section, .page-inner section, main[class*='gitbook']",
		classes:      []string{"gitbook*", "markdown-section"},
		htmlPatterns: []string{"gitbook", "gb-page"},
	},
}

// SelectorFor returns the content selector used for a known framework.
func SelectorFor(fw Framework) string {
	for _, sig := range signatures {
		if sig.framework == fw {
			return sig.selector
		}
	}
	return ""
}
