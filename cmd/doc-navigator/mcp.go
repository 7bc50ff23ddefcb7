package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/mcp"
)

// runMcpServer handles the mcp-server subcommand
func runMcpServer(args []string) {
	fs := newFlagSet("mcp-server", "mcp-server [options]")
	opts := addCommonFlags(fs, "info")
	transport := fs.String("transport", "stdio", "Transport type (stdio, sse)")
	port := fs.Int("port", 8080, "HTTP port (for sse transport)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: doc-navigator mcp-server [options]

Start an MCP (Model Context Protocol) server for AI tool integration.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Start with stdio transport (for desktop AI clients)
  doc-navigator mcp-server -config config.yaml

  # Start with SSE transport on port 8080
  doc-navigator mcp-server -config config.yaml -transport sse -port 8080

Available MCP Tools:
  list_documents    Navigation tree, optionally filtered
  get_outline       Heading outline with line and token stats
  get_section       One section's Markdown
  get_document      A whole document
  search            Full-text search over names, headings and text
  upload_document   Add a Markdown document
  remove_document   Start removing a document
  confirm_removal   Finish a pending removal
  current_view      The current selection
  select_section    Change the selection
  reload_documents  Re-read built-in sources in the background
  get_job_status    Status of a reload job
`)
	}

	parseOrExit(fs, args)
	os.Exit(doMcpServer(opts, *transport, *port, os.Stdout, os.Stderr))
}

// doMcpServer is the testable implementation of the MCP server
func doMcpServer(opts *commonOptions, transport string, port int, stdout, stderr io.Writer) int {
	// MCP protocol uses stdout, logs go to stderr
	log := logrus.New()
	log.SetOutput(stderr)
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level: %s\n", opts.LogLevel)
		return 1
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session, err := openSessionWithLogger(ctx, opts, log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	defer session.Close()
	go session.RunMaintenance(ctx)

	server, err := mcp.NewServer(&mcp.ServerConfig{
		Viewer:     session.Viewer,
		ConfigPath: opts.ConfigPath,
		Transport:  transport,
		Port:       port,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating MCP server: %v\n", err)
		return 1
	}

	log.Infof("Starting MCP server (transport: %s)", transport)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(stderr, "MCP server error: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
	}
	return 0
}
