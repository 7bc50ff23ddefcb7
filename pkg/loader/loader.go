// Package loader reads document text at the system edge: uploaded files from
// disk and built-in documents from their declared local or remote sources.
// Reads run concurrently; results are handed back only once every read in a
// batch has finished.
package loader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/detect"
	"github.com/Sriram-PR/doc-navigator/pkg/fetch"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

// Getter fetches a remote source. *fetch.Remote satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Loader reads uploads and built-in sources with bounded concurrency.
type Loader struct {
	cfg      *config.AppConfig
	remote   Getter // nil disables remote built-ins
	detector *detect.Detector
	workers  int
	log      *logrus.Entry
}

// New creates a Loader. remote may be nil when no built-in is fetched over HTTP.
func New(cfg *config.AppConfig, remote Getter, log *logrus.Entry) *Loader {
	workers := cfg.NumReadWorkers
	if workers <= 0 {
		workers = config.DefaultNumReadWorkers
	}
	return &Loader{
		cfg:      cfg,
		remote:   remote,
		detector: detect.NewDetector(log),
		workers:  workers,
		log:      log.WithField("component", "loader"),
	}
}

// UploadBatch is the outcome of reading a set of upload paths, before any
// file reaches the library.
type UploadBatch struct {
	Files      []models.FileContent // Successfully read, in input order
	Duplicates []string             // Names whose id already exists; never read
	Rejected   []string             // Unsupported extension; never read
	Failures   []models.FileFailure // Read errors
}

// Report folds the pre-read outcomes into a library upload report.
func (b UploadBatch) Report(merged models.UploadReport) models.UploadReport {
	merged.Duplicates = append(append([]string(nil), b.Duplicates...), merged.Duplicates...)
	merged.Rejected = append(merged.Rejected, b.Rejected...)
	merged.Failures = append(merged.Failures, b.Failures...)
	return merged
}

// readFailure wraps err as a per-file READ_FAILURE entry.
func readFailure(name string, err error) models.FileFailure {
	wrapped := fmt.Errorf("%w: %w", utils.ErrReadFailure, err)
	return models.FileFailure{
		Name:     name,
		Category: utils.CategorizeError(wrapped),
		Message:  wrapped.Error(),
	}
}

// ReadUploads reads the files at paths concurrently. Unsupported extensions are
// rejected and names for which exists reports true are skipped as duplicates,
// both before any read is attempted. A failed read never affects its siblings.
func (l *Loader) ReadUploads(ctx context.Context, paths []string, exists func(name string) bool) UploadBatch {
	var batch UploadBatch

	type job struct {
		path string
		name string
	}
	var jobs []job
	for _, p := range paths {
		name := filepath.Base(p)
		switch {
		case !utils.IsMarkdownFile(name):
			l.log.WithField("file", name).Warn("Rejected upload with unsupported extension")
			batch.Rejected = append(batch.Rejected, name)
		case exists != nil && exists(name):
			batch.Duplicates = append(batch.Duplicates, name)
		default:
			jobs = append(jobs, job{path: p, name: name})
		}
	}

	contents := make([]string, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			data, err := os.ReadFile(j.path)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %w", utils.ErrFilesystem, err)
				return nil
			}
			contents[i] = string(data)
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range jobs {
		if errs[i] != nil {
			l.log.WithField("file", j.name).Errorf("Upload read failed: %v", errs[i])
			batch.Failures = append(batch.Failures, readFailure(j.name, errs[i]))
			continue
		}
		batch.Files = append(batch.Files, models.FileContent{Name: j.name, Content: contents[i]})
	}
	return batch
}

// LoadBuiltIns reads every configured built-in document. Documents come back in
// configuration order; sources that fail are reported and left out.
func (l *Loader) LoadBuiltIns(ctx context.Context) ([]models.Document, []models.FileFailure) {
	return l.load(ctx, l.cfg.Categories)
}

// LoadCategory reads the built-in documents of one category.
func (l *Loader) LoadCategory(ctx context.Context, categoryID string) ([]models.Document, []models.FileFailure, error) {
	for _, cat := range l.cfg.Categories {
		if cat.ID == categoryID {
			docs, failures := l.load(ctx, []config.CategoryConfig{cat})
			return docs, failures, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: category %q", utils.ErrNotFound, categoryID)
}

func (l *Loader) load(ctx context.Context, categories []config.CategoryConfig) ([]models.Document, []models.FileFailure) {
	type job struct {
		file     config.FileConfig
		category string
	}
	var jobs []job
	for _, cat := range categories {
		for _, f := range cat.Files {
			jobs = append(jobs, job{file: f, category: cat.ID})
		}
	}

	contents := make([]string, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, j := range jobs {
		g.Go(func() error {
			contents[i], errs[i] = l.readSource(gctx, j.file)
			return nil
		})
	}
	_ = g.Wait()

	var docs []models.Document
	var failures []models.FileFailure
	for i, j := range jobs {
		fileLog := l.log.WithFields(logrus.Fields{"file_id": j.file.ID, "source": j.file.Source})
		if errs[i] != nil {
			fileLog.Errorf("Built-in document failed to load: %v", errs[i])
			failures = append(failures, readFailure(j.file.ID, errs[i]))
			continue
		}
		fileLog.Debug("Loaded built-in document")
		docs = append(docs, models.Document{
			ID:         j.file.ID,
			Name:       j.file.Name,
			Content:    contents[i],
			Origin:     models.OriginBuiltIn,
			CategoryID: j.category,
			Source:     j.file.Source,
		})
	}
	l.log.Infof("Loaded %d of %d built-in document(s)", len(docs), len(jobs))
	return docs, failures
}

// readSource returns the Markdown text of one built-in source, converting HTML when needed.
func (l *Loader) readSource(ctx context.Context, f config.FileConfig) (string, error) {
	source := f.ResolveSource(l.cfg.BaseDir)

	if f.IsRemote() {
		if l.remote == nil {
			return "", fmt.Errorf("no HTTP fetcher configured for '%s'", source)
		}
		page, err := l.remote.Get(ctx, source)
		if err != nil {
			return "", err
		}
		return l.convert(page.Body, f.ContentSelector, isHTML(page.ContentType, source), siteOf(source))
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrFilesystem, err)
	}
	return l.convert(data, f.ContentSelector, isHTML("", source), filepath.Dir(source))
}

// convert returns body as Markdown. HTML is converted when the source is HTML
// or a selector is configured; "auto" detects the selector per site.
func (l *Loader) convert(body []byte, selector string, html bool, site string) (string, error) {
	switch {
	case detect.IsAutoSelector(selector):
		return l.convertAuto(body, site)
	case selector != "" || html:
		return HTMLToMarkdown(body, selector)
	}
	return string(body), nil
}

func siteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
