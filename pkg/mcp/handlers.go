package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

// errorResult reports err to the client prefixed with its category.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", utils.CategorizeError(err), err))
}

func requireString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v := request.GetString(name, "")
	if v == "" {
		return "", mcp.NewToolResultError(name + " parameter is required")
	}
	return v, nil
}

// handleListDocuments handles the list_documents tool
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nav := s.viewer.Navigation(request.GetString("query", ""))

	total := 0
	for _, cat := range nav.Categories {
		total += len(cat.Files)
	}
	result := map[string]interface{}{
		"categories":       nav.Categories,
		"total_documents":  total,
		"navigation_level": s.viewer.Level(),
		"config_path":      s.cfg.ConfigPath,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetOutline handles the get_outline tool
func (s *Server) handleGetOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(request, "document_id")
	if errRes != nil {
		return errRes, nil
	}
	out, err := s.viewer.Outline(id)
	if err != nil {
		return errorResult(err), nil
	}
	result := map[string]interface{}{
		"document_id":   out.Document.ID,
		"document_name": out.Document.Name,
		"outline":       out.Entries,
		"stats":         out.Stats,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetSection handles the get_section tool
func (s *Server) handleGetSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(request, "document_id")
	if errRes != nil {
		return errRes, nil
	}
	sectionID, errRes := requireString(request, "section_id")
	if errRes != nil {
		return errRes, nil
	}
	sec, doc, err := s.viewer.Section(id, sectionID)
	if err != nil {
		return errorResult(err), nil
	}
	result := map[string]interface{}{
		"document_id":   doc.ID,
		"document_name": doc.Name,
		"section_id":    sec.Heading.Slug,
		"title":         sec.Heading.Title,
		"lines":         sec.LineCount(),
		"content":       sec.Text,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetDocument handles the get_document tool
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(request, "document_id")
	if errRes != nil {
		return errRes, nil
	}
	doc, err := s.viewer.Document(id)
	if err != nil {
		return errorResult(err), nil
	}
	result := map[string]interface{}{
		"id":       doc.ID,
		"name":     doc.Name,
		"origin":   doc.Origin,
		"category": doc.CategoryID,
		"headings": len(markdown.ExtractHeadings(doc.Content)),
		"content":  doc.Content,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleSearch handles the search tool
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, errRes := requireString(request, "query")
	if errRes != nil {
		return errRes, nil
	}
	hits := s.viewer.Search(query, request.GetInt("max_results", 0))
	result := map[string]interface{}{
		"query":         query,
		"results":       hits,
		"total_results": len(hits),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleUploadDocument handles the upload_document tool
func (s *Server) handleUploadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, errRes := requireString(request, "name")
	if errRes != nil {
		return errRes, nil
	}
	content := request.GetString("content", "")

	report := s.viewer.UploadContents([]models.FileContent{{Name: name, Content: content}})
	switch {
	case len(report.Rejected) > 0:
		return errorResult(fmt.Errorf("%w: %s", utils.ErrInvalidInputType, name)), nil
	case len(report.Duplicates) > 0:
		return errorResult(fmt.Errorf("%w: %s already loaded", utils.ErrDuplicate, name)), nil
	}

	doc := report.Added[0]
	result := map[string]interface{}{
		"id":       doc.ID,
		"name":     doc.Name,
		"sections": len(markdown.ExtractHeadingsAtLevel(doc.Content, s.viewer.Level())),
	}
	s.log.WithField("document_id", doc.ID).Info("Document uploaded via MCP")
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleRemoveDocument handles the remove_document tool
func (s *Server) handleRemoveDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(request, "document_id")
	if errRes != nil {
		return errRes, nil
	}
	token, err := s.viewer.RequestRemoval(id)
	if err != nil {
		return errorResult(err), nil
	}
	result := map[string]interface{}{
		"document_id": id,
		"token":       token,
		"message":     "Call confirm_removal with this token to remove the document",
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleConfirmRemoval handles the confirm_removal tool
func (s *Server) handleConfirmRemoval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, errRes := requireString(request, "token")
	if errRes != nil {
		return errRes, nil
	}
	doc, err := s.viewer.ConfirmRemoval(token)
	if err != nil {
		return errorResult(err), nil
	}
	result := map[string]interface{}{
		"removed": doc.ID,
		"name":    doc.Name,
		"state":   s.viewer.State().String(),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleCurrentView handles the current_view tool
func (s *Server) handleCurrentView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.viewer.Current()
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatView(view)), nil
}

// handleSelectSection handles the select_section tool
func (s *Server) handleSelectSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := requireString(request, "document_id")
	if errRes != nil {
		return errRes, nil
	}
	var (
		view viewer.View
		err  error
	)
	if sectionID := request.GetString("section_id", ""); sectionID != "" {
		view, err = s.viewer.SelectSection(id, sectionID)
	} else {
		view, err = s.viewer.SelectWhole(id)
	}
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(formatView(view)), nil
}

// handleReloadDocuments handles the reload_documents tool
func (s *Server) handleReloadDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categoryID := request.GetString("category_id", "")
	scope := categoryID
	if scope == "" {
		scope = ScopeAll
	} else if !s.hasCategory(categoryID) {
		return errorResult(fmt.Errorf("%w: category %q", utils.ErrNotFound, categoryID)), nil
	}

	job, created := s.jobManager.CreateJob(scope)
	if created {
		go s.runReload(job.ID, categoryID)
	}

	result := map[string]interface{}{
		"job_id":  job.ID,
		"scope":   job.Scope,
		"status":  job.Status,
		"started": created,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

func (s *Server) hasCategory(id string) bool {
	for _, cat := range s.viewer.Config().Categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

// runReload executes a reload job; it runs in its own goroutine.
func (s *Server) runReload(jobID, categoryID string) {
	jobLog := s.log.WithField("job_id", jobID)
	s.jobManager.UpdateStatus(jobID, JobStatusRunning, "")

	report, err := s.viewer.ReloadBuiltIns(s.jobManager.Context(jobID), categoryID)
	if err != nil {
		jobLog.Errorf("Reload failed: %v", err)
		s.jobManager.UpdateStatus(jobID, JobStatusFailed, err.Error())
		return
	}
	s.jobManager.UpdateProgress(jobID, report.Loaded, len(report.Failures))

	if len(report.Failures) > 0 && report.Loaded == 0 {
		s.jobManager.UpdateStatus(jobID, JobStatusFailed, report.Failures[0].Message)
		return
	}
	jobLog.Infof("Reload finished: %d loaded, %d failed", report.Loaded, len(report.Failures))
	s.jobManager.UpdateStatus(jobID, JobStatusCompleted, "")
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, errRes := requireString(request, "job_id")
	if errRes != nil {
		return errRes, nil
	}
	job := s.jobManager.GetJob(jobID)
	if job == nil {
		return errorResult(fmt.Errorf("%w: job %q", utils.ErrNotFound, jobID)), nil
	}
	b, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// formatView renders a view without its HTML, which MCP clients do not need.
func formatView(view viewer.View) string {
	view.HTML = ""
	b, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}

// formatJSON formats data as indented JSON
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
