package httpapi

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/render"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

// handleDocumentPage selects a document or section and renders it as a page.
func (s *Server) handleDocumentPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	section := chi.URLParam(r, "section")

	var (
		view viewer.View
		err  error
	)
	if section == "" {
		view, err = s.viewer.SelectWhole(id)
	} else {
		view, err = s.viewer.SelectSection(id, section)
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.writePage(w, view)
}

// handleQuickLink opens a file at its first topic.
func (s *Server) handleQuickLink(w http.ResponseWriter, r *http.Request) {
	view, err := s.viewer.SelectQuickLink(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.writePage(w, view)
}

// handleWelcomePage clears the selection and renders the welcome view.
func (s *Server) handleWelcomePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, s.viewer.ClearSelection())
}

func (s *Server) writePage(w http.ResponseWriter, view viewer.View) {
	cfg := s.viewer.Config()
	data := render.PageData{
		SiteTitle: config.GetEffectiveSiteTitle(*cfg),
		Footer:    cfg.FooterText,
	}

	switch view.Kind {
	case viewer.ViewWelcome:
		data.Title = view.Welcome.Title
		data.Content = welcomeHTML(view.Welcome)
	default:
		data.Title = view.DocumentName
		if view.SectionTitle != "" {
			data.Title = view.SectionTitle
		}
		data.Breadcrumb = crumbs(view)
		for _, item := range view.Outline {
			data.TOC = append(data.TOC, render.TOCEntry{Slug: item.Slug, Title: item.Title, Depth: item.Depth})
		}
		content := view.HTML
		if content == "" {
			content = "<pre>" + template.HTMLEscapeString(view.Markdown) + "</pre>"
		}
		data.Content = template.HTML(content)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WritePage(w, data); err != nil {
		s.log.Errorf("Failed to write page: %v", err)
	}
}

// crumbs links every breadcrumb element except the last.
func crumbs(view viewer.View) []render.Crumb {
	hrefs := []string{"/", "/docs/" + view.DocumentID}
	out := make([]render.Crumb, len(view.Breadcrumb))
	for i, label := range view.Breadcrumb {
		out[i].Label = label
		if i < len(view.Breadcrumb)-1 && i < len(hrefs) {
			out[i].Href = hrefs[i]
		}
	}
	return out
}

func welcomeHTML(welcome *viewer.Welcome) template.HTML {
	if welcome == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", template.HTMLEscapeString(welcome.Title))
	if welcome.Subtitle != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", template.HTMLEscapeString(welcome.Subtitle))
	}
	if len(welcome.QuickLinks) > 0 {
		b.WriteString("<ul class=\"quick-links\">\n")
		for _, link := range welcome.QuickLinks {
			fmt.Fprintf(&b, "<li><a href=\"/quick/%s\">%s</a>", template.HTMLEscapeString(link.FileID), template.HTMLEscapeString(link.Title))
			if link.Description != "" {
				fmt.Fprintf(&b, " %s", template.HTMLEscapeString(link.Description))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	return template.HTML(b.String())
}
