// Package main is the Seshat CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/seshat/internal/cli"
	"github.com/hyperjump/seshat/internal/config"
	"github.com/hyperjump/seshat/internal/fetch"
	"github.com/hyperjump/seshat/internal/importer"
	"github.com/hyperjump/seshat/internal/keyword"
	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/oracle"
	"github.com/hyperjump/seshat/internal/server"
	"github.com/hyperjump/seshat/internal/storage"
	"github.com/hyperjump/seshat/internal/watcher"
	"github.com/hyperjump/seshat/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/seshat/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "summary":
		runSummary()
	case "answer":
		runAnswer()
	case "article":
		runArticle()
	case "summarize":
		runSummarize()
	case "search":
		runSearch()
	case "import":
		runImport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("seshat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, imports, directory changes)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchSvc := watcher.New(
		cfg.Import.Directories,
		components.Importer.Extensions(),
		cfg.Import.RecursiveOrDefault(),
		components.Importer,
		watcher.WithLogger(logger),
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Oracle,
		components.Storage,
		components.KeywordIndex,
		cfg,
		logger,
		watchSvc,
		resolvedConfigPath,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// commandFlags are the flags shared by the request commands.
type commandFlags struct {
	configPath *string
	serverURL  *string
	output     *string
}

func addCommandFlags(fs *flag.FlagSet) commandFlags {
	return commandFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path (for direct mode)"),
		serverURL:  fs.String("server", defaultServerURL, "server URL (empty = open storage directly when the server is not running)"),
		output:     fs.String("output", "text", "output format: text or json"),
	}
}

func (f commandFlags) format() cli.OutputFormat {
	format, err := cli.ParseFormat(*f.output)
	if err != nil {
		fatalf("%v", err)
	}
	return format
}

// direct opens the components for a command run without a server. The
// returned cleanup closes them.
func (f commandFlags) direct() (*config.Config, *Components, func()) {
	cfg, _, err := loadConfig(*f.configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	return cfg, components, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func runSummary() {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	flags := addCommandFlags(fs)
	lines := fs.Int("lines", 0, "number of sentences (0 = configured default)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seshat summary [flags] <subject>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	req := &models.SummaryRequest{Subject: joinArgs(fs.Args()), Lines: *lines}
	if req.Subject == "" {
		fs.Usage()
		os.Exit(1)
	}
	format := flags.format()

	var resp *models.SummaryResponse
	if *flags.serverURL != "" {
		resp = &models.SummaryResponse{}
		if err := postJSON(*flags.serverURL, "/api/v1/summary", req, resp); err != nil {
			fatalf("Summary failed: %v", err)
		}
	} else {
		_, components, cleanup := flags.direct()
		defer cleanup()
		var err error
		resp, err = components.Oracle.Summary(context.Background(), req)
		if err != nil {
			fatalf("Summary failed: %v", err)
		}
	}
	if err := cli.WriteSummary(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runAnswer() {
	fs := flag.NewFlagSet("answer", flag.ExitOnError)
	flags := addCommandFlags(fs)
	lines := fs.Int("lines", 0, "number of sentences (0 = configured default)")
	deep := fs.Bool("deep", false, "include sections and items whose titles match the question")
	threshold := fs.Float64("threshold", 0, "title similarity threshold for deep answers (default from config)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seshat answer [flags] <subject> <question...>\n\n")
		fmt.Fprintf(fs.Output(), "Quote multi-word subjects; the remaining arguments form the question.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 2 {
		fs.Usage()
		os.Exit(1)
	}
	req := &models.AnswerRequest{
		Subject:  strings.TrimSpace(fs.Arg(0)),
		Question: joinArgs(fs.Args()[1:]),
		Lines:    *lines,
		Deep:     *deep,
	}
	if flagWasSet(fs, "threshold") {
		req.Threshold = threshold
	}
	format := flags.format()

	var resp *models.AnswerResponse
	if *flags.serverURL != "" {
		resp = &models.AnswerResponse{}
		if err := postJSON(*flags.serverURL, "/api/v1/answer", req, resp); err != nil {
			fatalf("Answer failed: %v", err)
		}
	} else {
		_, components, cleanup := flags.direct()
		defer cleanup()
		var err error
		resp, err = components.Oracle.Answer(context.Background(), req)
		if err != nil {
			fatalf("Answer failed: %v", err)
		}
	}
	if err := cli.WriteAnswer(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runArticle() {
	fs := flag.NewFlagSet("article", flag.ExitOnError)
	flags := addCommandFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seshat article [flags] <subject>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	subject := joinArgs(fs.Args())
	if subject == "" {
		fs.Usage()
		os.Exit(1)
	}
	format := flags.format()

	var view *models.ArticleView
	if *flags.serverURL != "" {
		view = &models.ArticleView{}
		if err := getJSON(*flags.serverURL, "/api/v1/article", map[string]string{"subject": subject}, view); err != nil {
			fatalf("Article failed: %v", err)
		}
	} else {
		_, components, cleanup := flags.direct()
		defer cleanup()
		var err error
		view, err = components.Oracle.Article(context.Background(), subject)
		if err != nil {
			fatalf("Article failed: %v", err)
		}
	}
	if err := cli.WriteArticle(os.Stdout, view, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

// runSummarize summarizes text from a file or stdin. It needs no storage, so
// it always runs in process.
func runSummarize() {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for the default line count)")
	question := fs.String("question", "", "rank sentences against this question instead of the first sentence")
	lines := fs.Int("lines", 0, "number of sentences (0 = configured default)")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seshat summarize [flags] [file]\n\nReads stdin when no file (or -) is given.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseFormat(*output)
	if err != nil {
		fatalf("%v", err)
	}
	text, err := readInput(fs.Arg(0), os.Stdin)
	if err != nil {
		fatalf("Failed to read input: %v", err)
	}

	defaults := oracle.DefaultDefaults()
	if cfg, _, err := loadConfig(*configPath); err == nil {
		defaults = summaryDefaults(cfg)
	}
	svc := oracle.NewService(nil, nil, nil, oracle.WithDefaults(defaults))
	resp, err := svc.Summarize(context.Background(), &models.SummarizeRequest{
		Text:     text,
		Question: *question,
		Lines:    *lines,
	})
	if err != nil {
		fatalf("Summarize failed: %v", err)
	}
	if err := cli.WriteSummarize(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

// readInput reads the named file, or r when name is empty or "-".
func readInput(name string, r io.Reader) (string, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(r)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	flags := addCommandFlags(fs)
	limit := fs.Int("limit", 10, "number of results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: seshat search [flags] <query>\n\n")
		fmt.Fprintf(fs.Output(), "Searches stored articles by title, summary and body.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := &models.SearchQuery{Query: joinArgs(fs.Args()), Limit: *limit, Fuzzy: *fuzzy}
	if query.Query == "" {
		fs.Usage()
		os.Exit(1)
	}
	format := flags.format()

	var resp *models.SearchResponse
	if *flags.serverURL != "" {
		resp = &models.SearchResponse{}
		params := map[string]string{
			"q":     query.Query,
			"limit": fmt.Sprint(query.Limit),
			"fuzzy": fmt.Sprint(query.Fuzzy),
		}
		if err := getJSON(*flags.serverURL, "/api/v1/articles/search", params, resp); err != nil {
			fatalf("Search failed: %v", err)
		}
	} else {
		_, components, cleanup := flags.direct()
		defer cleanup()
		var err error
		resp, err = components.Oracle.Search(context.Background(), query)
		if err != nil {
			fatalf("Search failed: %v", err)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

// runImport imports article files directly, or manages the server's watched
// directories with the add, remove and list forms.
func runImport() {
	if len(os.Args) >= 3 {
		switch os.Args[2] {
		case "add", "remove", "list":
			runImportDirectories(os.Args[2], os.Args[3:])
			return
		}
	}

	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	recursive := fs.Bool("recursive", true, "descend into subdirectories")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: seshat import [flags] <file|dir>...
       seshat import add [-server URL] [-sync=false] <dir>
       seshat import remove [-server URL] <dir>
       seshat import list [-server URL]

The first form opens storage directly; stop the server first.

`)
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	flags := commandFlags{configPath: configPath}
	_, components, cleanup := flags.direct()
	defer cleanup()

	ctx := context.Background()
	failed := false
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		if info.IsDir() {
			n, err := components.Importer.ImportDir(ctx, path, *recursive)
			fmt.Printf("%s: imported %d articles\n", path, n)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				failed = true
			}
			continue
		}
		a, err := components.Importer.ImportFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: imported %q (%s)\n", path, a.Title, a.ID)
	}
	if failed {
		os.Exit(1)
	}
}

func runImportDirectories(action string, args []string) {
	fs := flag.NewFlagSet("import "+action, flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	sync := fs.Bool("sync", true, "import existing files when adding a directory")
	_ = fs.Parse(argsReorder(args))

	switch action {
	case "list":
		var resp struct {
			Directories []string `json:"directories"`
		}
		if err := getJSON(*serverURL, "/api/v1/import/directories", nil, &resp); err != nil {
			fatalf("List failed: %v", err)
		}
		if len(resp.Directories) == 0 {
			fmt.Println("No import directories")
			return
		}
		for _, d := range resp.Directories {
			fmt.Println(d)
		}
	case "add", "remove":
		if fs.NArg() < 1 {
			fatalf("Usage: seshat import %s [-server URL] <dir>", action)
		}
		abs, err := filepath.Abs(fs.Arg(0))
		if err != nil {
			fatalf("Invalid path: %v", err)
		}
		var resp map[string]string
		if action == "add" {
			err = postJSON(*serverURL, "/api/v1/import/directories", map[string]interface{}{"path": abs, "sync": *sync}, &resp)
		} else {
			err = deleteJSON(*serverURL, "/api/v1/import/directories", map[string]string{"path": abs}, &resp)
		}
		if err != nil {
			fatalf("%s failed: %v", action, err)
		}
		fmt.Printf("%s: %s\n", resp["path"], resp["status"])
	}
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Articles        int64                  `json:"articles"`
	IndexedArticles uint64                 `json:"indexed_articles"`
	DiskUsageBytes  *int64                 `json:"disk_usage_bytes,omitempty"`
	Config          map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	flags := addCommandFlags(fs)
	_ = fs.Parse(os.Args[2:])
	format := flags.format()

	var status statusResponse
	if *flags.serverURL != "" {
		if err := getJSON(*flags.serverURL, "/api/v1/status", nil, &status); err != nil {
			fatalf("Status failed: %v", err)
		}
	} else {
		cfg, components, cleanup := flags.direct()
		defer cleanup()
		s, err := localStatus(context.Background(), components, cfg)
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		status = *s
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func localStatus(ctx context.Context, c *Components, cfg *config.Config) (*statusResponse, error) {
	articles, err := c.Storage.CountArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	indexed, err := c.KeywordIndex.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count indexed articles: %w", err)
	}
	defaults := c.Oracle.Defaults()
	status := &statusResponse{
		Articles:        articles,
		IndexedArticles: indexed,
		Config: map[string]interface{}{
			"default_lines":      defaults.Lines,
			"default_threshold":  defaults.Threshold,
			"default_deep":       defaults.Deep,
			"database_path":      cfg.Storage.DatabasePath,
			"bleve_index_path":   cfg.Storage.BleveIndexPath,
			"fetch_base_url":     cfg.Fetch.BaseURL,
			"import_directories": cfg.Import.Directories,
		},
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "articles:           %d   # stored articles\n", status.Articles)
	fmt.Fprintf(w, "indexed_articles:   %d   # articles in the keyword index\n", status.IndexedArticles)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + index on disk\n", *status.DiskUsageBytes)
	}
	if len(status.Config) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	keys := make([]string, 0, len(status.Config))
	for k := range status.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-19s %v\n", k+":", status.Config[k])
	}
}

// joinArgs joins all positional args with spaces so multi-word subjects and
// queries work the same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func summaryDefaults(cfg *config.Config) oracle.Defaults {
	return oracle.Defaults{
		Lines:     cfg.Summary.DefaultLines,
		Threshold: cfg.Summary.ThresholdOrDefault(),
		Deep:      cfg.Summary.DefaultDeep,
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Components holds initialized application components.
type Components struct {
	Storage      *storage.SQLiteStorage
	KeywordIndex keyword.KeywordIndex
	Oracle       *oracle.Service
	Importer     *importer.Importer
}

// Close releases resources.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	fetcher := fetch.NewWikipedia(cfg.Fetch.BaseURL, cfg.Fetch.UserAgent, cfg.Fetch.Timeout)
	svc := oracle.NewService(store, keywordIndex, fetcher,
		oracle.WithLogger(logger),
		oracle.WithDefaults(summaryDefaults(cfg)),
		oracle.WithSpellChecker(keyword.NewSpellChecker(keywordIndex)),
	)
	imp := importer.NewImporter(store, keywordIndex,
		importer.WithLogger(logger),
		importer.WithExtensions(cfg.Import.Extensions),
	)

	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Oracle:       svc,
		Importer:     imp,
	}, nil
}

func printUsage() {
	fmt.Println(`seshat - question-aware article summarizer

Usage:
  seshat server [flags]                          Start the HTTP server
  seshat summary [flags] <subject>               Summarize a subject's article
  seshat answer [flags] <subject> <question>     Answer a question about a subject
  seshat article [flags] <subject>               Show a subject's article
  seshat summarize [flags] [file]                Summarize text from a file or stdin
  seshat search [flags] <query>                  Search stored articles
  seshat import [flags] <file|dir>...            Import article files
  seshat import <add|remove|list>                Manage the server's import directories
  seshat status [flags]                          Show storage and index status
  seshat version                                 Show version
  seshat help                                    Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/seshat/config.yaml)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to open storage directly.
  --output string    Output format: text or json (default: text)

Server Flags:
  --debug            Enable debug logging

Summary / Answer Flags:
  --lines int          Number of sentences (default from config, or 100)
  --deep               Include matching sections and items (answer only)
  --threshold float    Title similarity threshold for --deep (default from config, or 0.5)

Summarize Flags:
  --question string    Rank sentences against a question

Search Flags:
  --limit int        Number of results (default: 10)
  --fuzzy            Enable fuzzy matching for typo tolerance

Examples:
  seshat server
  seshat summary --lines 3 "Albert Einstein"
  seshat answer --deep Cat "what do cats eat"
  seshat article --output json Cat
  cat notes.txt | seshat summarize --lines 2
  seshat search --fuzzy einstien
  seshat import ./articles
  seshat import add ./articles
  seshat status --output json`)
}
