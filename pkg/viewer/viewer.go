// Package viewer composes the document library, navigation controller,
// loader and renderer into the operations every presentation surface uses.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/library"
	"github.com/Sriram-PR/doc-navigator/pkg/loader"
	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/navigate"
	"github.com/Sriram-PR/doc-navigator/pkg/render"
	"github.com/Sriram-PR/doc-navigator/pkg/search"
	"github.com/Sriram-PR/doc-navigator/pkg/tokens"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// Options holds the collaborators of a Viewer.
type Options struct {
	Config   *config.AppConfig
	Library  *library.Library
	Loader   *loader.Loader   // nil: no built-ins and no path uploads
	Renderer *render.Renderer // nil: views carry Markdown only
	Counter  *tokens.Counter  // nil: token estimates are -1
	Logger   *logrus.Entry
}

// Viewer is the application state behind the CLI, MCP and HTTP surfaces.
type Viewer struct {
	cfg      *config.AppConfig
	lib      *library.Library
	nav      *navigate.Controller
	loader   *loader.Loader
	renderer *render.Renderer
	counter  *tokens.Counter
	log      *logrus.Entry
}

// New wires a Viewer. Removing the active document from the library resets navigation.
func New(opts Options) *Viewer {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	v := &Viewer{
		cfg:      cfg,
		lib:      opts.Library,
		nav:      navigate.NewController(opts.Library, cfg.NavigationHeadingLevel, cfg.TopicExclusions, log),
		loader:   opts.Loader,
		renderer: opts.Renderer,
		counter:  opts.Counter,
		log:      log.WithField("component", "viewer"),
	}
	v.lib.OnRemove(func(doc models.Document) {
		v.nav.OnDocumentRemoved(doc.ID)
	})
	return v
}

// Config returns the application config the viewer runs with.
func (v *Viewer) Config() *config.AppConfig { return v.cfg }

// Level is the navigation heading level.
func (v *Viewer) Level() int { return v.nav.Level() }

// State is the current navigation selection.
func (v *Viewer) State() navigate.State { return v.nav.State() }

// InitReport summarises startup population.
type InitReport struct {
	Restored   int                  `json:"restored"`
	BuiltIns   int                  `json:"built_ins"`
	Failures   []models.FileFailure `json:"failures,omitempty"`
	StorageErr string               `json:"storage_error,omitempty"` // Set when persisted uploads were unreadable
}

// Init restores persisted uploads, then loads the configured built-ins, and
// leaves navigation on the welcome view. Nothing here is fatal.
func (v *Viewer) Init(ctx context.Context) InitReport {
	var report InitReport

	restored, err := v.lib.LoadPersisted()
	if err != nil {
		report.StorageErr = err.Error()
		v.log.Warnf("Starting without prior uploads (%s)", utils.CategorizeError(err))
	}
	report.Restored = restored

	if v.loader != nil {
		docs, failures := v.loader.LoadBuiltIns(ctx)
		for _, doc := range docs {
			v.lib.UpsertBuiltIn(doc)
		}
		report.BuiltIns = len(docs)
		report.Failures = failures
	}

	v.nav.Reset()
	v.log.WithFields(logrus.Fields{"restored": report.Restored, "built_ins": report.BuiltIns, "failures": len(report.Failures)}).Info("Viewer initialized")
	return report
}

// ReloadReport summarises a built-in reload.
type ReloadReport struct {
	Loaded   int                  `json:"loaded"`
	Failures []models.FileFailure `json:"failures,omitempty"`
}

// ReloadBuiltIns re-reads built-in sources, all of them or one category, and
// replaces the loaded copies. Documents that fail keep their previous content.
func (v *Viewer) ReloadBuiltIns(ctx context.Context, categoryID string) (ReloadReport, error) {
	if v.loader == nil {
		return ReloadReport{}, errors.New("viewer has no loader")
	}
	var (
		docs     []models.Document
		failures []models.FileFailure
		err      error
	)
	if categoryID == "" {
		docs, failures = v.loader.LoadBuiltIns(ctx)
	} else {
		docs, failures, err = v.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return ReloadReport{}, err
		}
	}
	for _, doc := range docs {
		v.lib.UpsertBuiltIn(doc)
	}
	return ReloadReport{Loaded: len(docs), Failures: failures}, nil
}

// --- Library reads ---

// Documents lists every loaded document in insertion order.
func (v *Viewer) Documents() []models.Document { return v.lib.List() }

// Document returns one document.
func (v *Viewer) Document(id string) (models.Document, error) { return v.lib.Get(id) }

// --- Uploads ---

// Upload reads the files at paths and adds them to the library. The first added
// document becomes the active selection.
func (v *Viewer) Upload(ctx context.Context, paths []string) (models.UploadReport, error) {
	if v.loader == nil {
		return models.UploadReport{}, errors.New("viewer has no loader")
	}
	batch := v.loader.ReadUploads(ctx, paths, func(name string) bool {
		return v.lib.Has(library.UploadedID(name))
	})
	report := batch.Report(v.lib.AddUploadedBatch(batch.Files))
	v.nav.OnUploadCompleted(report.Added)
	return report, nil
}

// UploadContents adds already-read files. Unsupported names are rejected.
func (v *Viewer) UploadContents(files []models.FileContent) models.UploadReport {
	var accepted []models.FileContent
	var rejected []string
	for _, f := range files {
		if !utils.IsMarkdownFile(f.Name) {
			rejected = append(rejected, f.Name)
			continue
		}
		accepted = append(accepted, f)
	}
	report := v.lib.AddUploadedBatch(accepted)
	report.Rejected = append(report.Rejected, rejected...)
	v.nav.OnUploadCompleted(report.Added)
	return report
}

// --- Mutations ---

// RequestRemoval starts removing a document and returns its confirmation token.
func (v *Viewer) RequestRemoval(id string) (string, error) {
	return v.lib.RequestRemoval(id)
}

// ConfirmRemoval removes the document behind token.
func (v *Viewer) ConfirmRemoval(token string) (models.Document, error) {
	return v.lib.ConfirmRemoval(token)
}

// CancelRemoval forgets a pending removal.
func (v *Viewer) CancelRemoval(token string) bool {
	return v.lib.CancelRemoval(token)
}

// ReplaceContent swaps a document's text. When the active section no longer
// exists the selection moves to the document's first section.
func (v *Viewer) ReplaceContent(id, content string) (models.Document, error) {
	doc, err := v.lib.ReplaceContent(id, content)
	if err != nil {
		return models.Document{}, err
	}
	state := v.nav.State()
	if state.DocumentID == id && state.SectionID != "" {
		if _, err := markdown.FindSection(content, state.SectionID, v.nav.Level()); err != nil {
			if _, err := v.nav.SelectFirst(id); err != nil {
				v.log.Warnf("Could not reselect '%s' after edit: %v", id, err)
			}
		}
	}
	return doc, nil
}

// Export returns the download file name and raw content of a document.
func (v *Viewer) Export(id string) (string, string, error) {
	doc, err := v.lib.Get(id)
	if err != nil {
		return "", "", err
	}
	return utils.ExportFilename(doc.Name), doc.Content, nil
}

// --- Analysis ---

// DocumentOutline is the full heading tree of a document with its statistics.
type DocumentOutline struct {
	Document models.Document       `json:"-"`
	Root     *markdown.OutlineNode `json:"-"`
	Entries  []OutlineItem         `json:"outline"`
	Stats    tokens.DocumentStats  `json:"stats"`
}

// OutlineItem is one flattened outline heading.
type OutlineItem struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Depth int    `json:"depth"`
}

// Outline builds the outline and statistics of a document.
func (v *Viewer) Outline(id string) (DocumentOutline, error) {
	doc, err := v.lib.Get(id)
	if err != nil {
		return DocumentOutline{}, err
	}
	root := markdown.OutlineOf(doc.Content)
	out := DocumentOutline{
		Document: doc,
		Root:     root,
		Entries:  make([]OutlineItem, 0, root.Count()),
		Stats:    v.counter.Stats(doc.Content, v.nav.Level()),
	}
	for e := range root.Flatten() {
		out.Entries = append(out.Entries, OutlineItem{Level: e.Heading.Level, Title: e.Heading.Title, Slug: e.Heading.Slug, Depth: e.Depth})
	}
	return out, nil
}

// Section returns one section's text without changing the selection.
func (v *Viewer) Section(documentID, sectionID string) (markdown.Section, models.Document, error) {
	doc, err := v.lib.Get(documentID)
	if err != nil {
		return markdown.Section{}, models.Document{}, err
	}
	sec, err := markdown.FindSection(doc.Content, sectionID, v.nav.Level())
	if err != nil {
		return markdown.Section{}, doc, fmt.Errorf("document %q: %w", documentID, err)
	}
	return sec, doc, nil
}

// Search finds sections mentioning query across every document.
func (v *Viewer) Search(query string, maxResults int) []search.Hit {
	return search.Sections(v.lib.List(), v.nav.Level(), query, search.ClampMaxResults(maxResults))
}
