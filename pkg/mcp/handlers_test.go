package mcp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/library"
	"github.com/Sriram-PR/doc-navigator/pkg/loader"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"),
		[]byte("# Guide\n## Install\nRun the installer.\n## Configure\nEdit config.yaml.\n"), 0o644))

	cfg := &config.AppConfig{
		StateDir: dir,
		BaseDir:  dir,
		Categories: []config.CategoryConfig{{ID: "docs", Name: "Docs", Files: []config.FileConfig{
			{ID: "guide", Name: "Guide", Source: "guide.md"},
		}}},
	}
	_, err := cfg.Validate()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	v := viewer.New(viewer.Options{
		Config:  cfg,
		Library: library.New(library.Options{Logger: log}),
		Loader:  loader.New(cfg, nil, log),
		Logger:  log,
	})
	v.Init(context.Background())

	s, err := NewServer(&ServerConfig{Viewer: v, Transport: "stdio", Logger: logger})
	require.NoError(t, err)
	return s, dir
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestNewServer_RequiresViewer(t *testing.T) {
	_, err := NewServer(&ServerConfig{})
	assert.Error(t, err)
}

func TestHandleListDocuments(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListDocuments(context.Background(), callTool(nil))
	require.NoError(t, err)
	out := decode(t, res)

	assert.Equal(t, float64(1), out["total_documents"])
	assert.Equal(t, float64(2), out["navigation_level"])

	res, _ = s.handleListDocuments(context.Background(), callTool(map[string]interface{}{"query": "nothing-matches"}))
	assert.Equal(t, float64(0), decode(t, res)["total_documents"])
}

func TestHandleGetSection(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleGetSection(context.Background(), callTool(map[string]interface{}{
		"document_id": "guide", "section_id": "configure",
	}))
	require.NoError(t, err)
	out := decode(t, res)
	content, _ := out["content"].(string)
	assert.True(t, strings.HasPrefix(content, "## Configure\nEdit config.yaml."))
	assert.NotContains(t, content, "Install")
	assert.Equal(t, "Configure", out["title"])

	res, _ = s.handleGetSection(context.Background(), callTool(map[string]interface{}{
		"document_id": "guide", "section_id": "missing",
	}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "NOT_FOUND")

	res, _ = s.handleGetSection(context.Background(), callTool(map[string]interface{}{"document_id": "guide"}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "section_id parameter is required")
}

func TestHandleGetOutlineAndDocument(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleGetOutline(context.Background(), callTool(map[string]interface{}{"document_id": "guide"}))
	out := decode(t, res)
	outline, ok := out["outline"].([]interface{})
	require.True(t, ok)
	assert.Len(t, outline, 3)

	res, _ = s.handleGetDocument(context.Background(), callTool(map[string]interface{}{"document_id": "guide"}))
	out = decode(t, res)
	assert.Equal(t, "built-in", out["origin"])
	assert.Equal(t, float64(3), out["headings"])

	res, _ = s.handleGetDocument(context.Background(), callTool(map[string]interface{}{"document_id": "nope"}))
	assert.True(t, res.IsError)
}

func TestHandleSearch(t *testing.T) {
	s, _ := newTestServer(t)

	res, _ := s.handleSearch(context.Background(), callTool(map[string]interface{}{"query": "installer"}))
	out := decode(t, res)
	assert.Equal(t, float64(1), out["total_results"])

	res, _ = s.handleSearch(context.Background(), callTool(nil))
	assert.True(t, res.IsError)
}

func TestUploadAndTwoStepRemoval(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, _ := s.handleUploadDocument(ctx, callTool(map[string]interface{}{"name": "Notes.md", "content": "## One\n## Two\n"}))
	out := decode(t, res)
	assert.Equal(t, "uploaded-notes", out["id"])
	assert.Equal(t, float64(2), out["sections"])

	res, _ = s.handleUploadDocument(ctx, callTool(map[string]interface{}{"name": "Notes.md", "content": "again"}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "DUPLICATE")

	res, _ = s.handleUploadDocument(ctx, callTool(map[string]interface{}{"name": "notes.txt", "content": "x"}))
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "INVALID_INPUT_TYPE")

	res, _ = s.handleRemoveDocument(ctx, callTool(map[string]interface{}{"document_id": "uploaded-notes"}))
	token, _ := decode(t, res)["token"].(string)
	require.NotEmpty(t, token)

	res, _ = s.handleConfirmRemoval(ctx, callTool(map[string]interface{}{"token": token}))
	out = decode(t, res)
	assert.Equal(t, "uploaded-notes", out["removed"])
	assert.Equal(t, "no-selection", out["state"])

	res, _ = s.handleConfirmRemoval(ctx, callTool(map[string]interface{}{"token": token}))
	assert.True(t, res.IsError)
}

func TestSelectSectionAndCurrentView(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, _ := s.handleCurrentView(ctx, callTool(nil))
	assert.Equal(t, "welcome", decode(t, res)["kind"])

	res, _ = s.handleSelectSection(ctx, callTool(map[string]interface{}{"document_id": "guide", "section_id": "install"}))
	out := decode(t, res)
	assert.Equal(t, "section", out["kind"])
	assert.Nil(t, out["html"])

	res, _ = s.handleSelectSection(ctx, callTool(map[string]interface{}{"document_id": "guide", "section_id": "nope"}))
	assert.True(t, res.IsError)

	res, _ = s.handleCurrentView(ctx, callTool(nil))
	assert.Equal(t, "install", decode(t, res)["section_id"], "refused selection keeps state")

	res, _ = s.handleSelectSection(ctx, callTool(map[string]interface{}{"document_id": "guide"}))
	assert.Equal(t, "document", decode(t, res)["kind"])
}

func TestReloadDocumentsJob(t *testing.T) {
	s, dir := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte("# Guide\n## Upgrade\n"), 0o644))

	res, _ := s.handleReloadDocuments(ctx, callTool(map[string]interface{}{"category_id": "docs"}))
	jobID, _ := decode(t, res)["job_id"].(string)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		job := s.jobManager.GetJob(jobID)
		return job != nil && job.Status == JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	res, _ = s.handleGetJobStatus(ctx, callTool(map[string]interface{}{"job_id": jobID}))
	out := decode(t, res)
	assert.Equal(t, float64(1), out["documents_loaded"])

	doc, err := s.viewer.Document("guide")
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "## Upgrade")

	res, _ = s.handleReloadDocuments(ctx, callTool(map[string]interface{}{"category_id": "unknown"}))
	assert.True(t, res.IsError)

	res, _ = s.handleGetJobStatus(ctx, callTool(map[string]interface{}{"job_id": "nope"}))
	assert.True(t, res.IsError)
}
