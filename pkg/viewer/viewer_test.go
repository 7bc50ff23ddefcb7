package viewer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/navigate"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// testConfig declares two built-in categories backed by files in dir.
func testConfig(t *testing.T, dir string) *config.AppConfig {
	t.Helper()
	writeFile(t, dir, "intro.md", "# Intro\n## Table of Contents\n- x\n## Getting Started\nstart here\n## Next Steps\nmore\n")
	writeFile(t, dir, "api.md", "# API\n## Endpoints\nlist\n")
	writeFile(t, dir, "faq.md", "Just text, no headings.\n")

	cfg := &config.AppConfig{
		SiteTitle: "Test Docs",
		StateDir:  filepath.Join(dir, "state"),
		BaseDir:   dir,
		Categories: []config.CategoryConfig{
			{ID: "guides", Name: "Guides", Files: []config.FileConfig{
				{ID: "intro", Name: "Introduction", Source: "intro.md"},
			}},
			{ID: "reference", Name: "Reference", Files: []config.FileConfig{
				{ID: "api", Name: "API", Source: "api.md"},
				{ID: "faq", Name: "FAQ", Source: "faq.md"},
			}},
		},
		Welcome: config.WelcomeConfig{
			Title:      "Welcome",
			Subtitle:   "Pick a topic",
			QuickLinks: []config.QuickLink{{Title: "Start", FileID: "intro"}},
		},
	}
	_, err := cfg.Validate()
	require.NoError(t, err)
	return cfg
}

func openSession(t *testing.T, cfg *config.AppConfig, inMemory bool) *Session {
	t.Helper()
	s, err := Open(cfg, OpenOptions{InMemory: inMemory}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInit_LoadsBuiltInsAndShowsWelcome(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)

	report := s.Init(context.Background())

	assert.Equal(t, 3, report.BuiltIns)
	assert.Empty(t, report.Failures)
	assert.Empty(t, report.StorageErr)

	view, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, ViewWelcome, view.Kind)
	require.NotNil(t, view.Welcome)
	assert.Equal(t, "Test Docs", view.Welcome.SiteTitle)
	assert.Equal(t, "Welcome", view.Welcome.Title)
	assert.Len(t, view.Welcome.QuickLinks, 1)
}

func TestUpload_PartialBatchAndAutoSelect(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, testConfig(t, dir), true)
	s.Init(context.Background())

	up := t.TempDir()
	first, err := s.Upload(context.Background(), []string{writeFile(t, up, "Guide.md", "# Guide\n## Install\nsteps\n")})
	require.NoError(t, err)
	require.Len(t, first.Added, 1)

	paths := []string{
		writeFile(t, up, "again/Guide.md", "# Other guide\n"),
		writeFile(t, up, "a.md", "## One\n"),
		writeFile(t, up, "b.md", "## Two\n"),
		writeFile(t, up, "c.markdown", "## Three\n"),
		writeFile(t, up, "d.md", "## Four\n"),
		writeFile(t, up, "notes.txt", "plain"),
	}
	report, err := s.Upload(context.Background(), paths)
	require.NoError(t, err)

	assert.Len(t, report.Added, 4)
	assert.Equal(t, []string{"Guide.md"}, report.Duplicates)
	assert.Equal(t, []string{"notes.txt"}, report.Rejected)
	assert.Equal(t, navigate.State{DocumentID: "uploaded-a", SectionID: "one"}, s.State())

	guide, err := s.Document("uploaded-guide")
	require.NoError(t, err)
	assert.Equal(t, "# Guide\n## Install\nsteps\n", guide.Content, "duplicate must not overwrite")
}

func TestUpload_DuplicateWithinBatch(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	up := t.TempDir()
	report, err := s.Upload(context.Background(), []string{
		writeFile(t, up, "x/Guide.md", "# First\n"),
		writeFile(t, up, "y/Guide.md", "# Second\n"),
	})
	require.NoError(t, err)

	require.Len(t, report.Added, 1)
	assert.Equal(t, "uploaded-guide", report.Added[0].ID)
	assert.Equal(t, []string{"Guide.md"}, report.Duplicates)
}

func TestRemoveActiveDocument_ShowsWelcome(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	report := s.UploadContents([]models.FileContent{{Name: "Notes.md", Content: "# Notes\n## Alpha\na\n"}})
	require.Len(t, report.Added, 1)

	view, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, ViewSection, view.Kind)
	assert.Equal(t, "uploaded-notes", view.DocumentID)

	token, err := s.RequestRemoval("uploaded-notes")
	require.NoError(t, err)
	_, err = s.ConfirmRemoval(token)
	require.NoError(t, err)

	assert.True(t, s.State().IsEmpty())
	view, err = s.Current()
	require.NoError(t, err)
	assert.Equal(t, ViewWelcome, view.Kind)

	_, err = s.ConfirmRemoval(token)
	assert.ErrorIs(t, err, utils.ErrRemovalNotPending)
}

func TestRemoveOtherDocument_KeepsSelection(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())
	s.UploadContents([]models.FileContent{{Name: "Other.md", Content: "## X\n"}})

	_, err := s.SelectSection("api", "endpoints")
	require.NoError(t, err)

	token, err := s.RequestRemoval("uploaded-other")
	require.NoError(t, err)
	_, err = s.ConfirmRemoval(token)
	require.NoError(t, err)

	assert.Equal(t, navigate.State{DocumentID: "api", SectionID: "endpoints"}, s.State())
}

func TestSelectSection_View(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	view, err := s.SelectSection("intro", "getting-started")
	require.NoError(t, err)

	assert.Equal(t, ViewSection, view.Kind)
	assert.Equal(t, "## Getting Started\nstart here", view.Markdown)
	assert.Equal(t, []string{"Home", "Introduction", "Getting Started"}, view.Breadcrumb)
	assert.Contains(t, view.HTML, `id="getting-started"`)
}

func TestSelectSection_NotFoundKeepsState(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())
	_, err := s.SelectSection("intro", "next-steps")
	require.NoError(t, err)

	_, err = s.SelectSection("intro", "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = s.SelectSection("nope", "next-steps")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Equal(t, navigate.State{DocumentID: "intro", SectionID: "next-steps"}, s.State())
}

func TestSelectWhole_IncludesOutline(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	view, err := s.SelectWhole("intro")
	require.NoError(t, err)

	assert.Equal(t, ViewDocument, view.Kind)
	assert.Equal(t, []string{"Home", "Introduction"}, view.Breadcrumb)
	require.Len(t, view.Outline, 4)
	assert.Equal(t, OutlineItem{Level: 1, Title: "Intro", Slug: "intro", Depth: 0}, view.Outline[0])
	assert.Equal(t, OutlineItem{Level: 2, Title: "Getting Started", Slug: "getting-started", Depth: 1}, view.Outline[2])
	assert.Contains(t, view.HTML, `id="next-steps"`)
}

func TestSelectQuickLink_SkipsExcludedTopics(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	view, err := s.SelectQuickLink("intro")
	require.NoError(t, err)
	assert.Equal(t, "getting-started", view.SectionID)

	view, err = s.SelectQuickLink("faq")
	require.NoError(t, err)
	assert.Equal(t, ViewDocument, view.Kind, "a file without topics opens whole")
}

func TestNavigation_Structure(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())
	s.UploadContents([]models.FileContent{{Name: "Mine.md", Content: "## Alpha\n## Beta\n"}})

	nav := s.Navigation("")

	require.Len(t, nav.Categories, 3)
	assert.Equal(t, UploadedCategoryName, nav.Categories[0].Name)
	assert.True(t, nav.Categories[0].Files[0].ShowName)
	assert.True(t, nav.Categories[0].Files[0].Removable)
	assert.True(t, nav.Categories[0].Files[0].Active)
	assert.True(t, nav.Categories[0].Files[0].Topics[0].Active)

	guides := nav.Categories[1]
	assert.Equal(t, "guides", guides.ID)
	assert.False(t, guides.Files[0].ShowName, "single-file category hides the name")
	assert.Equal(t, []NavTopic{{ID: "getting-started", Title: "Getting Started"}, {ID: "next-steps", Title: "Next Steps"}}, guides.Files[0].Topics)

	reference := nav.Categories[2]
	require.Len(t, reference.Files, 2)
	assert.True(t, reference.Files[0].ShowName)
	assert.True(t, reference.Files[1].NoTopics)
	assert.False(t, reference.Files[1].Removable)
}

func TestNavigation_QueryFiltersTiersIndependently(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	nav := s.Navigation("STEPS")
	require.Len(t, nav.Categories, 1)
	f := nav.Categories[0].Files[0]
	assert.Equal(t, "intro", f.ID)
	assert.False(t, f.NameMatch)
	assert.Equal(t, []NavTopic{{ID: "next-steps", Title: "Next Steps"}}, f.Topics)

	nav = s.Navigation("faq")
	require.Len(t, nav.Categories, 1)
	f = nav.Categories[0].Files[0]
	assert.Equal(t, "faq", f.ID)
	assert.True(t, f.NameMatch)
	assert.Empty(t, f.Topics)

	assert.Empty(t, s.Navigation("zzz").Categories)
}

func TestReplaceContent_ReselectsWhenSectionVanishes(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())
	s.UploadContents([]models.FileContent{{Name: "Doc.md", Content: "## Old\n"}})
	require.Equal(t, "old", s.State().SectionID)

	_, err := s.ReplaceContent("uploaded-doc", "## New\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, "new", s.State().SectionID)

	_, err = s.ReplaceContent("uploaded-missing", "x")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestExport(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	name, content, err := s.Export("api")
	require.NoError(t, err)
	assert.Equal(t, "API.md", name)
	assert.Equal(t, "# API\n## Endpoints\nlist\n", content)

	_, _, err = s.Export("missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestOutline_Stats(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	out, err := s.Outline("intro")
	require.NoError(t, err)

	assert.Len(t, out.Entries, 4)
	require.Len(t, out.Stats.Sections, 3)
	assert.Equal(t, "getting-started", out.Stats.Sections[1].ID)
	assert.Greater(t, out.Stats.Tokens, 0)
}

func TestSearch(t *testing.T) {
	s := openSession(t, testConfig(t, t.TempDir()), true)
	s.Init(context.Background())

	hits := s.Search("start here", 0)
	require.NotEmpty(t, hits)
	assert.Equal(t, "intro", hits[0].DocumentID)
	assert.Equal(t, "getting-started", hits[0].SectionID)
}

func TestUploads_SurviveRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	s1, err := Open(cfg, OpenOptions{}, testLogger())
	require.NoError(t, err)
	s1.Init(context.Background())
	s1.UploadContents([]models.FileContent{{Name: "Keep.md", Content: "## Kept\n"}})
	require.NoError(t, s1.Close())

	s2 := openSession(t, cfg, false)
	report := s2.Init(context.Background())

	assert.Equal(t, 1, report.Restored)
	doc, err := s2.Document("uploaded-keep")
	require.NoError(t, err)
	assert.Equal(t, "## Kept\n", doc.Content)
	assert.Equal(t, models.OriginUploaded, doc.Origin)
	assert.True(t, s2.State().IsEmpty())
}

func TestSectionLabel(t *testing.T) {
	assert.Equal(t, "Getting Started", SectionLabel("getting-started"))
	assert.Equal(t, "H 2 Setup", SectionLabel("h-2-setup"))
	assert.Equal(t, "Heading", SectionLabel("heading"))
}

func TestReloadBuiltIns(t *testing.T) {
	dir := t.TempDir()
	s := openSession(t, testConfig(t, dir), true)
	s.Init(context.Background())

	writeFile(t, dir, "api.md", "# API\n## Endpoints\n## Errors\n")
	report, err := s.ReloadBuiltIns(context.Background(), "reference")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)

	doc, err := s.Document("api")
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "## Errors")

	_, err = s.ReloadBuiltIns(context.Background(), "unknown")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
