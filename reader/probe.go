package reader

import (
	"context"

	"github.com/isaacchacko/den"
)

type fetchMode int

const (
	modeUnknown fetchMode = iota
	modeHTTP
	modeBrowser
)

// ContentDiffers compares content extracted from HTTP-fetched HTML vs
// browser-rendered HTML. Returns true if the rendered content is more than
// 50% longer, or if either extraction fails.
func ContentDiffers(httpHTML, browserHTML string, extractor den.Extractor) bool {
	httpResult, err := extractor.Extract(httpHTML)
	if err != nil {
		return true
	}

	browserResult, err := extractor.Extract(browserHTML)
	if err != nil {
		return true
	}

	httpLen := len(httpResult.ContentHTML)
	browserLen := len(browserResult.ContentHTML)

	if httpLen == 0 && browserLen > 0 {
		return true
	}

	return float64(browserLen) > float64(httpLen)*1.5
}

func (r *Reader) mode(host string) fetchMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modes[host]
}

func (r *Reader) setMode(host string, m fetchMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.modes == nil {
		r.modes = make(map[string]fetchMode)
	}
	r.modes[host] = m
}

// probe fetches url both ways the first time a host is seen and remembers
// which fetcher the host needs:
//
//  1. If HTTP fails, use the browser.
//  2. If the browser fails, use HTTP.
//  3. If rendering adds meaningful content, use the browser.
//  4. Otherwise use HTTP.
func (r *Reader) probe(ctx context.Context, host, url string) (string, error) {
	httpHTML, httpErr := r.retry(ctx, r.Fetcher, url)
	browserHTML, browserErr := r.Browser.Fetch(ctx, url)

	switch {
	case httpErr != nil && browserErr != nil:
		return "", httpErr
	case httpErr != nil:
		r.setMode(host, modeBrowser)
		return browserHTML, nil
	case browserErr != nil:
		r.setMode(host, modeHTTP)
		return httpHTML, nil
	case ContentDiffers(httpHTML, browserHTML, r.Extractor):
		r.setMode(host, modeBrowser)
		return browserHTML, nil
	default:
		r.setMode(host, modeHTTP)
		return httpHTML, nil
	}
}
