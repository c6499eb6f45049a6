package den

import (
	"context"
	"time"
)

// Page is a single web search result.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchOptions configures a web search.
type SearchOptions struct {
	// Maximum number of pages to return.
	Limit int `json:"limit"`

	// Optional language code, e.g. "en".
	Lang string `json:"lang,omitempty"`

	// Safe search toggle.
	Safe bool `json:"safe,omitempty"`

	// Restrict results to a single site, e.g. "wikipedia.org".
	SiteFilter string `json:"siteFilter,omitempty"`
}

// Searcher runs web searches.
type Searcher interface {
	// Search returns at most opts.Limit pages for query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]Page, error)
}

// PageContent is the readable content of a fetched page.
type PageContent struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // Markdown
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// PageReader returns the readable content of a URL.
// Implementations hide fetching, retries, extraction, conversion and caching.
type PageReader interface {
	Read(ctx context.Context, url string) (*PageContent, error)
}

// PageCache stores page content for the lifetime of the process.
type PageCache interface {
	// FindPage returns the cached page for url.
	// Returns ENOTFOUND if the page is not cached.
	FindPage(ctx context.Context, url string) (*PageContent, error)

	// SavePage inserts or replaces the cached page.
	SavePage(ctx context.Context, page *PageContent) error

	// FindPages returns cached pages for the given URLs, skipping misses,
	// in the order of urls.
	FindPages(ctx context.Context, urls []string) ([]*PageContent, error)
}

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	Close() error
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// DomainLimiter rate limits requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
