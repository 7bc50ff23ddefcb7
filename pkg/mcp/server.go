package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
)

const (
	serverName    = "doc-navigator"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	Viewer     *viewer.Viewer
	ConfigPath string
	Transport  string // "stdio" or "sse"
	Port       int
	Logger     *logrus.Logger
}

// Server exposes the document library as MCP tools
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	viewer     *viewer.Viewer
	log        *logrus.Entry
	jobManager *JobManager
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.Viewer == nil {
		return nil, fmt.Errorf("Viewer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		viewer:     cfg.Viewer,
		log:        cfg.Logger.WithField("component", "mcp"),
		jobManager: NewJobManager(),
	}
	s.registerTools()
	return s, nil
}

func documentIDParam() mcp.ToolOption {
	return mcp.WithString("document_id",
		mcp.Required(),
		mcp.Description("Document id as returned by list_documents (e.g. 'getting-started' or 'uploaded-notes')"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	tools := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{mcp.NewTool("list_documents",
			mcp.WithDescription("List loaded documents with their navigable sections, grouped by category"),
			mcp.WithString("query", mcp.Description("Case-insensitive filter applied to document names and section titles")),
		), s.handleListDocuments},

		{mcp.NewTool("get_outline",
			mcp.WithDescription("Get the heading outline of a document with line and token counts per section"),
			documentIDParam(),
		), s.handleGetOutline},

		{mcp.NewTool("get_section",
			mcp.WithDescription("Get the Markdown text of one section of a document"),
			documentIDParam(),
			mcp.WithString("section_id", mcp.Required(), mcp.Description("Section id (heading slug) from get_outline or list_documents")),
		), s.handleGetSection},

		{mcp.NewTool("get_document",
			mcp.WithDescription("Get the full Markdown content of a document"),
			documentIDParam(),
		), s.handleGetDocument},

		{mcp.NewTool("search",
			mcp.WithDescription("Search document names, section titles and section text"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query (case-insensitive substring match)")),
			mcp.WithNumber("max_results", mcp.Description("Maximum number of results to return (default: 10, max: 100)")),
		), s.handleSearch},

		{mcp.NewTool("upload_document",
			mcp.WithDescription("Add a Markdown document to the library. It is kept across restarts."),
			mcp.WithString("name", mcp.Required(), mcp.Description("File name ending in .md or .markdown")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Markdown text")),
		), s.handleUploadDocument},

		{mcp.NewTool("remove_document",
			mcp.WithDescription("Request removal of a document. Returns a token that confirm_removal must be called with."),
			documentIDParam(),
		), s.handleRemoveDocument},

		{mcp.NewTool("confirm_removal",
			mcp.WithDescription("Confirm a removal requested with remove_document"),
			mcp.WithString("token", mcp.Required(), mcp.Description("Token returned by remove_document")),
		), s.handleConfirmRemoval},

		{mcp.NewTool("current_view",
			mcp.WithDescription("Describe the current navigation selection: welcome view, a section, or a whole document"),
		), s.handleCurrentView},

		{mcp.NewTool("select_section",
			mcp.WithDescription("Move the navigation selection to a section, or to the whole document when section_id is omitted"),
			documentIDParam(),
			mcp.WithString("section_id", mcp.Description("Section id; omit for the whole document")),
		), s.handleSelectSection},

		{mcp.NewTool("reload_documents",
			mcp.WithDescription("Re-read built-in documents from their sources in the background. Returns a job id."),
			mcp.WithString("category_id", mcp.Description("Limit the reload to one category (optional)")),
		), s.handleReloadDocuments},

		{mcp.NewTool("get_job_status",
			mcp.WithDescription("Get the status of a reload job"),
			mcp.WithString("job_id", mcp.Required(), mcp.Description("The job id returned by reload_documents")),
		), s.handleGetJobStatus},
	}

	for _, t := range tools {
		s.mcpServer.AddTool(t.tool, t.handler)
	}
	s.log.Infof("Registered %d MCP tools", len(tools))
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio", "":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown cancels running reload jobs
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
