// Package slog decorates den services with structured logging.
//
// Each wrapper logs one record per call, with the call's duration and error,
// and otherwise delegates unchanged.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/isaacchacko/den"
)

var _ den.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging. Name tells the plain HTTP
// fetcher apart from the browser in the log.
type LoggingFetcher struct {
	next   den.Fetcher
	name   string
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next den.Fetcher, name string, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, name: name, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
// Failures are logged at warn level with their error code.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			f.logger.Warn("fetch",
				"fetcher", f.name,
				"url", url,
				"code", den.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		f.logger.Info("fetch",
			"fetcher", f.name,
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher and logs a failed shutdown.
func (f *LoggingFetcher) Close() error {
	err := f.next.Close()
	if err != nil {
		f.logger.Warn("fetcher close", "fetcher", f.name, "err", err)
	}
	return err
}

var _ den.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   den.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next den.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

func (s *LoggingSearcher) Search(ctx context.Context, query string, opts den.SearchOptions) (pages []den.Page, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", query,
			"limit", opts.Limit,
			"count", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}

var _ den.PageReader = (*LoggingReader)(nil)

// LoggingReader wraps a PageReader with logging.
type LoggingReader struct {
	next   den.PageReader
	logger *slog.Logger
}

// NewLoggingReader creates a new LoggingReader.
func NewLoggingReader(next den.PageReader, logger *slog.Logger) *LoggingReader {
	return &LoggingReader{next: next, logger: logger}
}

func (r *LoggingReader) Read(ctx context.Context, url string) (page *den.PageContent, err error) {
	defer func(begin time.Time) {
		var size int
		if page != nil {
			size = len(page.Content)
		}
		r.logger.Info("read",
			"url", url,
			"chars", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Read(ctx, url)
}

var _ den.ConceptExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a ConceptExtractor with logging.
type LoggingExtractor struct {
	next   den.ConceptExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next den.ConceptExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

func (e *LoggingExtractor) ExtractConcepts(ctx context.Context, url string) (concepts []den.Concept, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract concepts",
			"url", url,
			"count", len(concepts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractConcepts(ctx, url)
}

var _ den.SimilarityScorer = (*LoggingScorer)(nil)

// LoggingScorer wraps a SimilarityScorer with debug logging.
// Scoring runs once per tree edge, so records are emitted at debug level.
type LoggingScorer struct {
	next   den.SimilarityScorer
	logger *slog.Logger
}

// NewLoggingScorer creates a new LoggingScorer.
func NewLoggingScorer(next den.SimilarityScorer, logger *slog.Logger) *LoggingScorer {
	return &LoggingScorer{next: next, logger: logger}
}

func (s *LoggingScorer) Score(ctx context.Context, a, b string) (score float64, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("score",
			"a", a,
			"b", b,
			"score", score,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Score(ctx, a, b)
}

var _ den.ConceptDeduplicator = (*LoggingDeduplicator)(nil)

// LoggingDeduplicator wraps a ConceptDeduplicator with logging.
type LoggingDeduplicator struct {
	next   den.ConceptDeduplicator
	logger *slog.Logger
}

// NewLoggingDeduplicator creates a new LoggingDeduplicator.
func NewLoggingDeduplicator(next den.ConceptDeduplicator, logger *slog.Logger) *LoggingDeduplicator {
	return &LoggingDeduplicator{next: next, logger: logger}
}

func (d *LoggingDeduplicator) Deduplicate(ctx context.Context, concepts []den.Concept) (result *den.DedupeResult, err error) {
	defer func(begin time.Time) {
		var removed int
		if result != nil {
			removed = result.RemovedCount
		}
		d.logger.Info("deduplicate",
			"count", len(concepts),
			"removed", removed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Deduplicate(ctx, concepts)
}

var _ den.Summarizer = (*LoggingSummarizer)(nil)

// LoggingSummarizer wraps a Summarizer with logging.
type LoggingSummarizer struct {
	next   den.Summarizer
	logger *slog.Logger
}

// NewLoggingSummarizer creates a new LoggingSummarizer.
func NewLoggingSummarizer(next den.Summarizer, logger *slog.Logger) *LoggingSummarizer {
	return &LoggingSummarizer{next: next, logger: logger}
}

func (s *LoggingSummarizer) Summarize(ctx context.Context, pages []string, concepts []den.Concept, topic string) (summary *den.Summary, err error) {
	defer func(begin time.Time) {
		var short string
		if summary != nil {
			short = summary.ShortAnswer
		}
		s.logger.Info("summarize",
			"topic", topic,
			"pages", len(pages),
			"concepts", len(concepts),
			"short", short,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Summarize(ctx, pages, concepts, topic)
}
