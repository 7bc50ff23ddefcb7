// Package detect picks the main-content selector of an HTML documentation page
// by recognising the site generator that produced it.
package detect

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Framework is a recognised documentation generator.
type Framework string

const (
	FrameworkUnknown     Framework = "unknown"
	FrameworkDocusaurus  Framework = "docusaurus"
	FrameworkMkDocs      Framework = "mkdocs"
	FrameworkSphinx      Framework = "sphinx"
	FrameworkGitBook     Framework = "gitbook"
	FrameworkReadTheDocs Framework = "readthedocs"
)

// AutoSelector is the content_selector value that asks for detection.
const AutoSelector = "auto"

// Result is the outcome of detecting one page.
type Result struct {
	Framework Framework
	Selector  string // Empty when no framework matched; convert the whole body
}

// Detector remembers the result per site so every page of a site converts alike.
type Detector struct {
	mu    sync.RWMutex
	cache map[string]Result
	log   *logrus.Entry
}

// NewDetector creates a Detector with an empty per-site cache.
func NewDetector(log *logrus.Entry) *Detector {
	return &Detector{
		cache: make(map[string]Result),
		log:   log.WithField("component", "detect"),
	}
}

// Detect returns the content selector for doc. site keys the cache (a host
// name for remote pages, a directory for local files); empty disables caching.
func (d *Detector) Detect(doc *goquery.Document, site string) Result {
	if site != "" {
		d.mu.RLock()
		cached, ok := d.cache[site]
		d.mu.RUnlock()
		if ok {
			return cached
		}
	}

	result := Result{Framework: FrameworkUnknown}
	html, _ := doc.Html()
	html = strings.ToLower(html)
	for _, sig := range signatures {
		if sig.matches(doc, html) {
			result = Result{Framework: sig.framework, Selector: sig.selector}
			break
		}
	}

	if result.Framework == FrameworkUnknown {
		d.log.Debugf("No framework detected for '%s', converting page body", site)
	} else {
		d.log.Infof("Detected %s for '%s', using selector: %s", result.Framework, site, result.Selector)
	}

	if site != "" {
		d.mu.Lock()
		d.cache[site] = result
		d.mu.Unlock()
	}
	return result
}

// Cached reports how many sites have a remembered result.
func (d *Detector) Cached() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cache)
}

// IsAutoSelector reports whether selector asks for detection.
func IsAutoSelector(selector string) bool {
	return strings.EqualFold(strings.TrimSpace(selector), AutoSelector)
}
