// Package rod renders JavaScript-heavy pages in headless Chrome. The page
// reader switches to it for hosts whose plain HTTP response is an empty shell.
package rod

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/isaacchacko/den"
)

var _ den.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// serializeJS returns the rendered document including open shadow roots,
// which outerHTML omits.
const serializeJS = `() => {
	const roots = [];
	const walk = (node) => {
		for (const el of node.querySelectorAll('*')) {
			if (el.shadowRoot) {
				roots.push(el.shadowRoot);
				walk(el.shadowRoot);
			}
		}
	};
	walk(document);
	const root = document.documentElement;
	if (typeof root.getHTML !== 'function') {
		return '<!DOCTYPE html>' + root.outerHTML;
	}
	return '<!DOCTYPE html><html>' + root.getHTML({serializableShadowRoots: true, shadowRoots: roots}) + '</html>';
}`

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	settle  time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	settle   time.Duration
	maxPages int
	bin      string
	logger   *slog.Logger
}

// WithFetchTimeout bounds each Fetch call.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithSettle waits d after the load event so client-side rendering can finish.
func WithSettle(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.settle = d
	}
}

// WithBrowserRecycling recycles the browser after n rendered pages.
func WithBrowserRecycling(n int) FetcherOption {
	return func(c *fetcherConfig) {
		c.maxPages = n
	}
}

// WithBin renders with the Chrome binary at path.
func WithBin(path string) FetcherOption {
	return func(c *fetcherConfig) {
		c.bin = path
	}
}

// WithLogger logs browser lifecycle events.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(c *fetcherConfig) {
		c.logger = logger
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	cfg := fetcherConfig{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(
		WithMaxPages(cfg.maxPages),
		WithBrowserBin(cfg.bin),
		WithManagerLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Fetcher{manager: manager, timeout: cfg.timeout, settle: cfg.settle}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", den.Errorf(den.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, release, err := f.manager.Acquire()
	if err != nil {
		return "", den.Errorf(den.EINVALID, "%v", err)
	}
	defer release()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", fetchErr(ctx, "navigating", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fetchErr(ctx, "waiting for load", err)
	}

	if f.settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.settle):
		}
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return "", fetchErr(ctx, "serializing page", err)
	}

	return res.Value.Str(), nil
}

// fetchErr prefers the context error so callers can match on deadlines.
func fetchErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// LauncherPID returns the process ID of the current browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Recycles reports how many times the browser has been replaced.
func (f *Fetcher) Recycles() int {
	return f.manager.Recycles()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}
