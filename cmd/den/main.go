package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/accrete"
	"github.com/isaacchacko/den/bloom"
	"github.com/isaacchacko/den/fs"
	"github.com/isaacchacko/den/gemini"
	dengoquery "github.com/isaacchacko/den/goquery"
	"github.com/isaacchacko/den/htmltomarkdown"
	denhttp "github.com/isaacchacko/den/http"
	"github.com/isaacchacko/den/layout"
	"github.com/isaacchacko/den/readability"
	"github.com/isaacchacko/den/reader"
	"github.com/isaacchacko/den/rod"
	"github.com/isaacchacko/den/session"
	denslog "github.com/isaacchacko/den/slog"
	"github.com/isaacchacko/den/sqlite"
	"github.com/isaacchacko/den/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. The schema is reset on open, so state never outlives
	// the process.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Collaborator overrides for end-to-end testing.
	Searcher  den.Searcher
	Fetcher   den.Fetcher
	Generator gemini.Generator
	Tokens    den.TokenCounter

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("den"),
		kong.Description("Grow a knowledge den from web search results."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'den --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DEN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	searcher := denslog.NewLoggingSearcher(m.searcher(cli), logger)
	sessions := denslog.NewLoggingSessionService(sqlite.NewSessionService(m.DB), logger)
	deps.Sessions = session.NewRegistry(sessions, searcher)

	if strings.HasPrefix(kongCtx.Command(), "explore") {
		cache := sqlite.NewPageCache(m.DB)
		pageReader, err := m.reader(cli, cache, logger, stderr)
		if err != nil {
			return err
		}

		gen, err := m.generator(ctx, cli, logger, stderr)
		if err != nil {
			return err
		}

		extractor := gemini.NewConceptExtractor(gen, denslog.NewLoggingReader(pageReader, logger))
		tokens := m.tokens(cli, logger)
		extractor.Tokens = tokens
		summarizer := gemini.NewSummarizer(gen, cache)
		summarizer.Tokens = tokens

		deps.Den = accrete.NewDen(&accrete.Engine{
			Extractor:    denslog.NewLoggingExtractor(extractor, logger),
			Scorer:       denslog.NewLoggingScorer(gemini.NewScorer(gen), logger),
			Deduplicator: denslog.NewLoggingDeduplicator(gemini.NewDeduplicator(gen), logger),
			Summarizer:   denslog.NewLoggingSummarizer(summarizer, logger),
			Searcher:     searcher,
			Logger:       logger,
			CallTimeout:  cli.Timeout,
		})
		deps.Layouter = layout.New()
		deps.Exporter = fs.NewExporter(cache)
		deps.Exporter.Logger = logger
	}

	return kongCtx.Run(deps)
}

func (m *Main) searcher(cli *CLI) den.Searcher {
	switch {
	case m.Searcher != nil:
		return m.Searcher
	case cli.SerperKey != "":
		return denhttp.NewSerper(cli.SerperKey)
	default:
		return dengoquery.NewDuckDuckGo()
	}
}

func (m *Main) reader(cli *CLI, cache den.PageCache, logger *slog.Logger, stderr io.Writer) (*reader.Reader, error) {
	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = denhttp.NewFetcher(denhttp.WithTimeout(cli.Timeout))
	}

	r := &reader.Reader{
		Fetcher:   denslog.NewLoggingFetcher(fetcher, "http", logger),
		Extractor: trafilatura.NewExtractor(),
		Fallback:  readability.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
		Cache:     cache,
		Seen:      bloom.NewFilter(10000, 0.01),
		Limiter:   reader.NewDomainLimiter(1.0),
		Logger:    logger,
	}

	if cli.Browser {
		browser, err := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithBin(cli.ChromeBin),
			rod.WithLogger(logger),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed to use --browser")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		r.Browser = denslog.NewLoggingFetcher(browser, "browser", logger)
		m.closers = append(m.closers, r.Browser)
	}

	return r, nil
}

func (m *Main) generator(ctx context.Context, cli *CLI, logger *slog.Logger, stderr io.Writer) (gemini.Generator, error) {
	if m.Generator != nil {
		return m.Generator, nil
	}

	if cli.GeminiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, den.Errorf(den.EINVALID, "GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cli.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	return gemini.NewClient(client, gemini.WithModel(cli.Model), gemini.WithLogger(logger)), nil
}

// tokens returns nil when the tokenizer cannot be loaded; the extractor and
// summarizer then estimate tokens from character counts.
func (m *Main) tokens(cli *CLI, logger *slog.Logger) den.TokenCounter {
	if m.Tokens != nil {
		return m.Tokens
	}
	tokens, err := gemini.NewTokenCounter(cli.Model)
	if err != nil {
		logger.Warn("token counting unavailable", "model", cli.Model, "err", err)
		return nil
	}
	return tokens
}

func defaultDBPath() string {
	if path := os.Getenv("DEN_DB"); path != "" {
		return path
	}
	return ":memory:"
}
