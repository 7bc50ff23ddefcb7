package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-navigator/pkg/config"
	"github.com/Sriram-PR/doc-navigator/pkg/markdown"
	"github.com/Sriram-PR/doc-navigator/pkg/models"
	"github.com/Sriram-PR/doc-navigator/pkg/tokens"
	"github.com/Sriram-PR/doc-navigator/pkg/utils"
	"github.com/Sriram-PR/doc-navigator/pkg/viewer"
	"github.com/Sriram-PR/doc-navigator/pkg/watch"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "upload":
		runUpload(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "outline":
		runOutline(os.Args[2:])
	case "show":
		runShow(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "remove":
		runRemove(os.Args[2:])
	case "edit":
		runEdit(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("doc-navigator %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `doc-navigator - Markdown documentation navigator

Usage:
  doc-navigator <command> [options]

Commands:
  upload      Add Markdown files to the uploaded documents
  list        Print the navigation tree
  outline     Print a document's heading outline
  show        Print a document or one of its sections
  search      Search document names, headings and text
  remove      Remove a document (asks for confirmation)
  edit        Replace a document's content
  export      Write a document to a .md file
  validate    Validate configuration file
  serve       Start the HTTP navigator
  mcp-server  Start MCP server for AI tool integration
  version     Show version info

Run 'doc-navigator <command> -h' for command-specific help.`)
}

// commonOptions are the flags every library command accepts.
type commonOptions struct {
	ConfigPath string
	LogLevel   string
	InMemory   bool
}

func addCommonFlags(fs *flag.FlagSet, defaultLevel string) *commonOptions {
	opts := &commonOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "config.yaml", "Path to config file")
	fs.StringVar(&opts.LogLevel, "loglevel", defaultLevel, "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.InMemory, "memory", false, "Do not read or write persisted uploads")
	return opts
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-navigator %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig loads, parses and validates the config file.
func loadConfig(path string) (*config.AppConfig, []string, error) {
	return config.Load(path)
}

// setupLogger creates a logrus.Logger writing to w at the given level.
func setupLogger(logLevelStr string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.WarnLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'warn'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}
	return log
}

// openSession loads configuration and returns an initialised session.
func openSession(ctx context.Context, opts *commonOptions, stderr io.Writer) (*viewer.Session, error) {
	return openSessionWithLogger(ctx, opts, setupLogger(opts.LogLevel, stderr), stderr)
}

func openSessionWithLogger(ctx context.Context, opts *commonOptions, log *logrus.Logger, stderr io.Writer) (*viewer.Session, error) {
	cfg, warnings, err := loadConfig(opts.ConfigPath)
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return nil, err
	}

	session, err := viewer.Open(cfg, viewer.OpenOptions{InMemory: opts.InMemory}, log.WithField("component", "cli"))
	if err != nil {
		return nil, err
	}

	report := session.Init(ctx)
	for _, f := range report.Failures {
		fmt.Fprintf(stderr, "WARN: built-in '%s' not loaded [%s]: %s\n", f.Name, f.Category, f.Message)
	}
	if report.StorageErr != "" {
		fmt.Fprintf(stderr, "WARN: previous uploads could not be restored: %s\n", report.StorageErr)
	}
	return session, nil
}

func parseOrExit(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
}

// --- upload ---

func runUpload(args []string) {
	fs := newFlagSet("upload", "upload [options] FILE...")
	opts := addCommonFlags(fs, "warn")
	parseOrExit(fs, args)
	os.Exit(doUpload(opts, fs.Args(), os.Stdout, os.Stderr))
}

// doUpload adds files and prints the batch report.
// Returns exit code (0 = at least one file added or nothing to do, 1 = error).
func doUpload(opts *commonOptions, paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: at least one file is required")
		return 1
	}
	ctx := context.Background()
	session, err := openSession(ctx, opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	report, err := session.Upload(ctx, paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printUploadReport(stdout, report)
	if report.HasProblems() {
		fmt.Fprintf(stderr, "Warning: %d of %d file(s) not added\n", len(paths)-len(report.Added), len(paths))
	}
	if len(report.Added) == 0 {
		return 1
	}
	return 0
}

func printUploadReport(w io.Writer, report models.UploadReport) {
	for _, doc := range report.Added {
		fmt.Fprintf(w, "Added: %s (%s)\n", doc.Name, doc.ID)
	}
	for _, name := range report.Duplicates {
		fmt.Fprintf(w, "Skipped duplicate: %s\n", name)
	}
	for _, name := range report.Rejected {
		fmt.Fprintf(w, "Rejected (not .md/.markdown): %s\n", name)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "Failed [%s]: %s: %s\n", f.Category, f.Name, f.Message)
	}
}

// --- list ---

func runList(args []string) {
	fs := newFlagSet("list", "list [options]")
	opts := addCommonFlags(fs, "warn")
	query := fs.String("q", "", "Filter file names and topics")
	parseOrExit(fs, args)
	os.Exit(doList(opts, *query, os.Stdout, os.Stderr))
}

// doList prints the navigation tree, filtered by query.
func doList(opts *commonOptions, query string, stdout, stderr io.Writer) int {
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	nav := session.Navigation(query)
	if len(nav.Categories) == 0 {
		fmt.Fprintln(stdout, "No documents.")
		return 0
	}
	for _, cat := range nav.Categories {
		fmt.Fprintf(stdout, "%s\n", cat.Name)
		for _, file := range cat.Files {
			indent := "  "
			if file.ShowName {
				fmt.Fprintf(stdout, "  %s [%s]\n", file.Name, file.ID)
				indent = "    "
			}
			if file.NoTopics {
				fmt.Fprintf(stdout, "%s(whole document) %s\n", indent, file.ID)
				continue
			}
			for _, topic := range file.Topics {
				fmt.Fprintf(stdout, "%s%s  %s#%s\n", indent, topic.Title, file.ID, topic.ID)
			}
		}
	}
	return 0
}

// --- outline ---

func runOutline(args []string) {
	fs := newFlagSet("outline", "outline [options] -doc ID")
	opts := addCommonFlags(fs, "warn")
	docID := fs.String("doc", "", "Document id")
	showTokens := fs.Bool("tokens", false, "Annotate navigation-level sections with token counts")
	parseOrExit(fs, args)
	os.Exit(doOutline(opts, *docID, *showTokens, os.Stdout, os.Stderr))
}

// doOutline prints a document's heading tree.
func doOutline(opts *commonOptions, docID string, showTokens bool, stdout, stderr io.Writer) int {
	if docID == "" {
		fmt.Fprintln(stderr, "Error: -doc is required")
		return 1
	}
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	out, err := session.Outline(docID)
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}

	treeOpts := markdown.TreeOptions{ShowLevels: true}
	if showTokens {
		treeOpts.Annotate = func(h markdown.Heading) string {
			sec, ok := out.Stats.ForSection(h.Slug)
			if !ok || h.Level != session.Level() {
				return ""
			}
			if sec.Tokens < 0 {
				return fmt.Sprintf("(%d lines)", sec.Lines)
			}
			return fmt.Sprintf("(%d lines, %d tokens)", sec.Lines, sec.Tokens)
		}
	}
	if err := markdown.WriteOutlineTree(stdout, out.Document.Name, out.Root, treeOpts, nil); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if showTokens && out.Stats.Tokens != tokens.Unavailable {
		fmt.Fprintf(stdout, "\n%d lines, %d headings, %d tokens\n", out.Stats.Lines, out.Stats.Headings, out.Stats.Tokens)
	}
	return 0
}

// --- show ---

func runShow(args []string) {
	fs := newFlagSet("show", "show [options] -doc ID [-section ID]")
	opts := addCommonFlags(fs, "warn")
	docID := fs.String("doc", "", "Document id")
	sectionID := fs.String("section", "", "Section id (navigation-level heading slug)")
	asHTML := fs.Bool("html", false, "Print rendered HTML instead of Markdown")
	parseOrExit(fs, args)
	os.Exit(doShow(opts, *docID, *sectionID, *asHTML, os.Stdout, os.Stderr))
}

// doShow prints the view a selection produces.
func doShow(opts *commonOptions, docID, sectionID string, asHTML bool, stdout, stderr io.Writer) int {
	if docID == "" {
		fmt.Fprintln(stderr, "Error: -doc is required")
		return 1
	}
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	var view viewer.View
	if sectionID != "" {
		view, err = session.SelectSection(docID, sectionID)
	} else {
		view, err = session.SelectWhole(docID)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}

	fmt.Fprintf(stdout, "%s\n\n", strings.Join(view.Breadcrumb, " > "))
	if asHTML {
		fmt.Fprintln(stdout, view.HTML)
	} else {
		fmt.Fprintln(stdout, view.Markdown)
	}
	return 0
}

// --- search ---

func runSearch(args []string) {
	fs := newFlagSet("search", "search [options] -q QUERY")
	opts := addCommonFlags(fs, "warn")
	query := fs.String("q", "", "Search query")
	maxResults := fs.Int("max", 10, "Maximum number of results")
	parseOrExit(fs, args)
	os.Exit(doSearch(opts, *query, *maxResults, os.Stdout, os.Stderr))
}

// doSearch prints full-text search hits.
func doSearch(opts *commonOptions, query string, maxResults int, stdout, stderr io.Writer) int {
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(stderr, "Error: -q is required")
		return 1
	}
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	hits := session.Search(query, maxResults)
	if len(hits) == 0 {
		fmt.Fprintln(stdout, "No matches.")
		return 0
	}
	for _, hit := range hits {
		target := hit.DocumentID
		if hit.SectionID != "" {
			target += "#" + hit.SectionID
		}
		fmt.Fprintf(stdout, "%s [%s]\n    %s\n", target, hit.MatchLocation, hit.Snippet)
	}
	return 0
}

// --- remove ---

func runRemove(args []string) {
	fs := newFlagSet("remove", "remove [options] -doc ID")
	opts := addCommonFlags(fs, "warn")
	docID := fs.String("doc", "", "Document id")
	yes := fs.Bool("yes", false, "Remove without asking")
	parseOrExit(fs, args)
	os.Exit(doRemove(opts, *docID, *yes, os.Stdin, os.Stdout, os.Stderr))
}

// doRemove asks for confirmation on stdin unless yes is set.
func doRemove(opts *commonOptions, docID string, yes bool, stdin io.Reader, stdout, stderr io.Writer) int {
	if docID == "" {
		fmt.Fprintln(stderr, "Error: -doc is required")
		return 1
	}
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	token, err := session.RequestRemoval(docID)
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}

	if !yes {
		doc, _ := session.Document(docID)
		fmt.Fprintf(stdout, "Remove '%s'? [y/N] ", doc.Name)
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			session.CancelRemoval(token)
			fmt.Fprintln(stdout, "Cancelled.")
			return 0
		}
	}

	doc, err := session.ConfirmRemoval(token)
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}
	fmt.Fprintf(stdout, "Removed: %s (%s)\n", doc.Name, doc.ID)
	if doc.Origin == models.OriginBuiltIn {
		fmt.Fprintln(stdout, "Note: built-in documents are reloaded from configuration on the next start.")
	}
	return 0
}

// --- edit ---

func runEdit(args []string) {
	fs := newFlagSet("edit", "edit [options] -doc ID [-file PATH]")
	opts := addCommonFlags(fs, "warn")
	docID := fs.String("doc", "", "Document id")
	file := fs.String("file", "", "File with the new content (default: stdin)")
	parseOrExit(fs, args)
	os.Exit(doEdit(opts, *docID, *file, os.Stdin, os.Stdout, os.Stderr))
}

// doEdit replaces a document's content with the file at path, or stdin.
func doEdit(opts *commonOptions, docID, path string, stdin io.Reader, stdout, stderr io.Writer) int {
	if docID == "" {
		fmt.Fprintln(stderr, "Error: -doc is required")
		return 1
	}

	var content []byte
	var err error
	if path != "" {
		content, err = os.ReadFile(path)
	} else {
		content, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: read new content: %v\n", err)
		return 1
	}

	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	doc, err := session.ReplaceContent(docID, string(content))
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}
	fmt.Fprintf(stdout, "Updated: %s (%d bytes)\n", doc.ID, len(doc.Content))
	if !doc.Origin.Persisted() {
		fmt.Fprintln(stdout, "Note: edits to built-in documents are not saved.")
	}
	return 0
}

// --- export ---

func runExport(args []string) {
	fs := newFlagSet("export", "export [options] -doc ID [-out DIR]")
	opts := addCommonFlags(fs, "warn")
	docID := fs.String("doc", "", "Document id")
	outDir := fs.String("out", ".", "Directory to write the file to")
	parseOrExit(fs, args)
	os.Exit(doExport(opts, *docID, *outDir, os.Stdout, os.Stderr))
}

// doExport writes a document to outDir as <name>.md.
func doExport(opts *commonOptions, docID, outDir string, stdout, stderr io.Writer) int {
	if docID == "" {
		fmt.Fprintln(stderr, "Error: -doc is required")
		return 1
	}
	session, err := openSession(context.Background(), opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	filename, content, err := session.Export(docID)
	if err != nil {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", utils.CategorizeError(err), err)
		return 1
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	target := filepath.Join(outDir, filename)
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Exported: %s\n", target)
	return 0
}

// --- validate ---

func runValidate(args []string) {
	fs := newFlagSet("validate", "validate [options]")
	configFile := fs.String("config", "config.yaml", "Path to config file")
	parseOrExit(fs, args)
	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	if _, err := os.Stat(configPath); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	appCfg, warnings, err := loadConfig(configPath)
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	if appCfg.ReloadInterval != "" {
		if _, err := watch.ParseInterval(appCfg.ReloadInterval); err != nil {
			fmt.Fprintf(stderr, "ERROR: reload_interval: %v\n", err)
			return 1
		}
	}
	for _, cat := range appCfg.Categories {
		fmt.Fprintf(stdout, "OK: [%s] %d files\n", cat.ID, len(cat.Files))
	}
	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}
