package viewer

import (
	"strings"
	"unicode"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/navigate"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// ViewKind tells presentation code which layout to draw.
type ViewKind string

const (
	ViewWelcome  ViewKind = "welcome"
	ViewSection  ViewKind = "section"
	ViewDocument ViewKind = "document"
)

// HomeCrumb is the first breadcrumb entry of every document view.
const HomeCrumb = "Home"

// Welcome is the content of the NoSelection view.
type Welcome struct {
	SiteTitle  string             `json:"site_title"`
	Title      string             `json:"title"`
	Subtitle   string             `json:"subtitle,omitempty"`
	QuickLinks []config.QuickLink `json:"quick_links,omitempty"`
}

// View is what the content area shows for the current selection.
type View struct {
	Kind         ViewKind       `json:"kind"`
	State        navigate.State `json:"-"`
	DocumentID   string         `json:"document_id,omitempty"`
	DocumentName string         `json:"document_name,omitempty"`
	SectionID    string         `json:"section_id,omitempty"`
	SectionTitle string         `json:"section_title,omitempty"`
	Breadcrumb   []string       `json:"breadcrumb,omitempty"`
	Markdown     string         `json:"markdown,omitempty"`
	HTML         string         `json:"html,omitempty"`
	Outline      []OutlineItem  `json:"outline,omitempty"` // Whole-document views only
	Welcome      *Welcome       `json:"welcome,omitempty"`
}

// SectionLabel turns a section id into a breadcrumb label:
// hyphens become spaces and every word is capitalised.
func SectionLabel(sectionID string) string {
	var b strings.Builder
	prevWord := false
	for _, r := range strings.ReplaceAll(sectionID, "-", " ") {
		word := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = word
	}
	return b.String()
}

// WelcomeView is the view shown with nothing selected.
func (v *Viewer) WelcomeView() View {
	return View{
		Kind: ViewWelcome,
		Welcome: &Welcome{
			SiteTitle:  config.GetEffectiveSiteTitle(*v.cfg),
			Title:      config.GetEffectiveWelcomeTitle(*v.cfg),
			Subtitle:   v.cfg.Welcome.Subtitle,
			QuickLinks: v.cfg.Welcome.QuickLinks,
		},
	}
}

// Current builds the view for the current selection.
func (v *Viewer) Current() (View, error) {
	state := v.nav.State()
	if state.IsEmpty() {
		return v.WelcomeView(), nil
	}

	doc, err := v.lib.Get(state.DocumentID)
	if err != nil {
		v.nav.Reset()
		return v.WelcomeView(), err
	}

	if state.IsWhole() {
		view := View{
			Kind:         ViewDocument,
			State:        state,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Breadcrumb:   []string{HomeCrumb, doc.Name},
			Markdown:     doc.Content,
		}
		for e := range markdown.OutlineOf(doc.Content).Flatten() {
			view.Outline = append(view.Outline, OutlineItem{Level: e.Heading.Level, Title: e.Heading.Title, Slug: e.Heading.Slug, Depth: e.Depth})
		}
		view.HTML = v.renderHTML(doc.Content)
		return view, nil
	}

	sec, err := markdown.FindSection(doc.Content, state.SectionID, v.nav.Level())
	if err != nil {
		return View{}, err
	}
	return View{
		Kind:         ViewSection,
		State:        state,
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		SectionID:    sec.Heading.Slug,
		SectionTitle: sec.Heading.Title,
		Breadcrumb:   []string{HomeCrumb, doc.Name, SectionLabel(sec.Heading.Slug)},
		Markdown:     sec.Text,
		HTML:         v.renderHTML(sec.Text),
	}, nil
}

func (v *Viewer) renderHTML(content string) string {
	if v.renderer == nil {
		return ""
	}
	html, err := v.renderer.HTML(content)
	if err != nil {
		v.log.Warnf("Render failed (%s): %v", utils.CategorizeError(err), err)
		return ""
	}
	return html
}

// SelectWhole shows a whole document with its outline.
func (v *Viewer) SelectWhole(documentID string) (View, error) {
	if err := v.nav.SelectWhole(documentID); err != nil {
		return View{}, err
	}
	return v.Current()
}

// SelectSection shows one section. On NOT_FOUND the selection is unchanged.
func (v *Viewer) SelectSection(documentID, sectionID string) (View, error) {
	if _, err := v.nav.SelectSection(documentID, sectionID); err != nil {
		return View{}, err
	}
	return v.Current()
}

// SelectFirst shows a document's first topic, or the whole document without topics.
func (v *Viewer) SelectFirst(documentID string) (View, error) {
	if _, err := v.nav.SelectFirst(documentID); err != nil {
		return View{}, err
	}
	return v.Current()
}

// SelectQuickLink follows a welcome-view quick link to its file's first topic.
func (v *Viewer) SelectQuickLink(fileID string) (View, error) {
	return v.SelectFirst(fileID)
}

// ClearSelection returns to the welcome view.
func (v *Viewer) ClearSelection() View {
	v.nav.Reset()
	return v.WelcomeView()
}
