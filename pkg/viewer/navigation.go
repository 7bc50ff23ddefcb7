package viewer

import (
	"strconv"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/navigate"
	"github.com/Sriram-PR/doc-navigator/pkg/search"
)

// UploadedCategoryID and UploadedCategoryName label the synthetic category of uploads.
const (
	UploadedCategoryID   = "uploaded"
	UploadedCategoryName = "Uploaded Files"
)

// NavTopic is a navigable section of a file.
type NavTopic struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active,omitempty"`
}

// NavFile is one document in the navigation tree.
type NavFile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ShowName  bool       `json:"show_name"`
	Removable bool       `json:"removable"`
	NameMatch bool       `json:"name_match"` // The file name passes the query
	NoTopics  bool       `json:"no_topics"`  // The document has no navigation-level headings
	Active    bool       `json:"active,omitempty"`
	Topics    []NavTopic `json:"topics"` // Topics passing the query
}

// NavCategory groups files under one heading.
type NavCategory struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Files []NavFile `json:"files"`
}

// Navigation is the filtered navigation tree.
type Navigation struct {
	Query      string        `json:"query,omitempty"`
	Categories []NavCategory `json:"categories"`
}

// Navigation builds the navigation tree. Uploads come first, then built-ins by
// configured category. The query filters file names and topic titles
// independently; a file stays listed while its name or any topic matches.
func (v *Viewer) Navigation(query string) Navigation {
	state := v.nav.State()
	nav := Navigation{Query: query, Categories: make([]NavCategory, 0, len(v.cfg.Categories)+1)}

	if uploaded := v.lib.ListByOrigin(models.OriginUploaded); len(uploaded) > 0 {
		cat := NavCategory{ID: UploadedCategoryID, Name: UploadedCategoryName}
		for _, doc := range uploaded {
			if f, ok := v.navFile(doc, true, query, state); ok {
				f.Removable = true
				cat.Files = append(cat.Files, f)
			}
		}
		if len(cat.Files) > 0 {
			nav.Categories = append(nav.Categories, cat)
		}
	}

	for _, catCfg := range v.cfg.Categories {
		cat := NavCategory{ID: catCfg.ID, Name: catCfg.Name}
		showName := len(catCfg.Files) > 1 || v.cfg.ShowFileNameInNav
		for _, fileCfg := range catCfg.Files {
			doc, err := v.lib.Get(fileCfg.ID)
			if err != nil || doc.Origin != models.OriginBuiltIn {
				continue
			}
			if f, ok := v.navFile(doc, showName, query, state); ok {
				cat.Files = append(cat.Files, f)
			}
		}
		if len(cat.Files) > 0 {
			nav.Categories = append(nav.Categories, cat)
		}
	}
	return nav
}

func (v *Viewer) navFile(doc models.Document, showName bool, query string, state navigate.State) (NavFile, bool) {
	topics := markdown.ExtractTopics(doc.Content, v.nav.Level(), v.cfg.TopicExclusions)

	// Topics are keyed by position: distinct titles can share a slug.
	entries := make([]search.Entry, len(topics))
	for i, t := range topics {
		entries[i] = search.Entry{ID: strconv.Itoa(i), Text: t.Title}
	}
	tiers := search.FilterTiers([]search.Entry{{ID: doc.ID, Text: doc.Name}}, entries, query)

	f := NavFile{
		ID:        doc.ID,
		Name:      doc.Name,
		ShowName:  showName,
		NameMatch: len(tiers.Documents) > 0,
		NoTopics:  len(topics) == 0,
		Active:    state.DocumentID == doc.ID,
		Topics:    make([]NavTopic, 0, len(tiers.Headings)),
	}
	for _, idx := range tiers.Headings {
		i, _ := strconv.Atoi(idx)
		t := topics[i]
		f.Topics = append(f.Topics, NavTopic{
			ID:     t.Slug,
			Title:  t.Title,
			Active: f.Active && state.SectionID == t.Slug,
		})
	}

	if !f.NameMatch && len(f.Topics) == 0 {
		return NavFile{}, false
	}
	return f, true
}
