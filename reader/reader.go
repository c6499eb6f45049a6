// Package reader turns URLs into readable page content.
//
// A Reader fetches a page with retries and per-domain rate limiting,
// extracts the main content, converts it to Markdown and caches the result
// so a page read during ingestion is available to the summarizer and to
// later ingestions without another fetch.
package reader

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/bloom"
)

// DefaultReadTimeout bounds one uncached read.
const DefaultReadTimeout = 45 * time.Second

var _ den.PageReader = (*Reader)(nil)

// Reader implements den.PageReader.
type Reader struct {
	Fetcher   den.Fetcher
	Extractor den.Extractor
	Converter den.Converter

	// Browser renders JavaScript-heavy hosts. Optional.
	Browser den.Fetcher

	// Fallback is tried when Extractor fails or finds no content. Optional.
	Fallback den.Extractor

	// Cache stores read pages. Optional.
	Cache den.PageCache

	// Seen records every URL saved to Cache, so a definite miss skips
	// the cache lookup. Optional.
	Seen *bloom.Filter

	// Limiter rate limits fetches per host. Optional.
	Limiter den.DomainLimiter

	// RetryDelays overrides DefaultRetryDelays.
	RetryDelays []time.Duration

	// Timeout bounds one uncached read, so a slow host cannot consume the
	// caller's whole deadline. Defaults to DefaultReadTimeout.
	Timeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time

	mu    sync.Mutex
	modes map[string]fetchMode
}

// Read returns the readable content of rawURL, from the cache when present.
// Returns EINVALID for a malformed URL and EEXTRACTION when the page cannot
// be fetched or yields no content.
func (r *Reader) Read(ctx context.Context, rawURL string) (*den.PageContent, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, den.Errorf(den.EINVALID, "invalid page URL %q", rawURL)
	}

	if page := r.cached(ctx, rawURL); page != nil {
		return page, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	html, err := r.fetch(readCtx, u)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, den.Errorf(den.EEXTRACTION, "fetch %s: %v", rawURL, err)
	}

	extracted, err := r.extract(html)
	if err != nil {
		return nil, den.Errorf(den.EEXTRACTION, "extract %s: %v", rawURL, err)
	}

	markdown, err := r.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, den.Errorf(den.EEXTRACTION, "convert %s: %v", rawURL, err)
	}

	page := &den.PageContent{
		URL:         rawURL,
		Title:       extracted.Title,
		Content:     markdown,
		ContentHash: ComputeHash(markdown),
		FetchedAt:   r.now().UTC(),
	}
	r.save(ctx, page)
	return page, nil
}

func (r *Reader) cached(ctx context.Context, rawURL string) *den.PageContent {
	if r.Cache == nil {
		return nil
	}
	if r.Seen != nil && !r.Seen.Test(rawURL) {
		return nil
	}

	page, err := r.Cache.FindPage(ctx, rawURL)
	if err != nil {
		if den.ErrorCode(err) != den.ENOTFOUND {
			r.logger().Warn("page cache lookup failed", "url", rawURL, "error", err)
		}
		return nil
	}
	return page
}

func (r *Reader) save(ctx context.Context, page *den.PageContent) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.SavePage(ctx, page); err != nil {
		r.logger().Warn("page cache save failed", "url", page.URL, "error", err)
		return
	}
	if r.Seen != nil {
		r.Seen.Add(page.URL)
		r.logger().Debug("page cached", "url", page.URL, "cached", r.Seen.EstimatedCount())
	}
}

func (r *Reader) fetch(ctx context.Context, u *url.URL) (string, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	rawURL := u.String()
	if r.Browser == nil {
		return r.retry(ctx, r.Fetcher, rawURL)
	}

	switch r.mode(u.Host) {
	case modeHTTP:
		return r.retry(ctx, r.Fetcher, rawURL)
	case modeBrowser:
		return r.retry(ctx, r.Browser, rawURL)
	}
	return r.probe(ctx, u.Host, rawURL)
}

func (r *Reader) retry(ctx context.Context, f den.Fetcher, rawURL string) (string, error) {
	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return fetchWithRetry(ctx, rawURL, f.Fetch, r.logger(), delays)
}

func (r *Reader) extract(html string) (*den.ExtractResult, error) {
	result, err := r.Extractor.Extract(html)
	if r.Fallback != nil && (err != nil || empty(result)) {
		result, err = r.Fallback.Extract(html)
	}
	if err != nil {
		return nil, err
	}
	if empty(result) {
		return nil, den.Errorf(den.EEXTRACTION, "no main content found")
	}
	return result, nil
}

func empty(r *den.ExtractResult) bool {
	return r == nil || strings.TrimSpace(r.ContentHTML) == ""
}

func (r *Reader) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultReadTimeout
	}
	return r.Timeout
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (r *Reader) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
