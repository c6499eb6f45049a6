// Package goquery implements HTML scraping on top of goquery, including the
// DuckDuckGo lite web search used when no search API key is configured.
package goquery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/isaacchacko/den"
	"golang.org/x/time/rate"
)

// DefaultDuckDuckGoEndpoint is the DuckDuckGo lite HTML interface.
const DefaultDuckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"

const ddgUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var _ den.Searcher = (*DuckDuckGo)(nil)

// DuckDuckGo implements den.Searcher by scraping DuckDuckGo's lite HTML page.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	backoff  []time.Duration
}

// DuckDuckGoOption configures a DuckDuckGo searcher.
type DuckDuckGoOption func(*DuckDuckGo)

// WithEndpoint overrides the search endpoint.
func WithEndpoint(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.endpoint = endpoint
	}
}

// WithClient sets the HTTP client.
func WithClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

// WithRate limits queries to rps per second.
func WithRate(rps float64) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithBackoff sets the waits between retries after HTTP 429.
func WithBackoff(delays ...time.Duration) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.backoff = delays
	}
}

// NewDuckDuckGo creates a DuckDuckGo searcher limited to one query per second.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint: DefaultDuckDuckGoEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		backoff:  []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search scrapes results for query. Returns ECOLLABORATOR when DuckDuckGo
// cannot be reached or keeps rate limiting.
func (d *DuckDuckGo) Search(ctx context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, den.Errorf(den.EINVALID, "search query required")
	}

	resp, err := d.post(ctx, buildDuckDuckGoForm(query, opts))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "duckduckgo: parse results: %v", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	return ParseDuckDuckGoResults(doc, limit), nil
}

func (d *DuckDuckGo) post(ctx context.Context, form url.Values) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ddgUserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := d.client.Do(req)
		if err != nil {
			return nil, den.Errorf(den.ECOLLABORATOR, "duckduckgo: %v", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < len(d.backoff):
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.backoff[attempt]):
			}
		default:
			resp.Body.Close()
			return nil, den.Errorf(den.ECOLLABORATOR, "duckduckgo http %d", resp.StatusCode)
		}
	}
}

// ddgRegions maps language codes to DuckDuckGo region codes.
var ddgRegions = map[string]string{
	"en": "us-en",
	"de": "de-de",
	"fr": "fr-fr",
	"es": "es-es",
	"it": "it-it",
	"ja": "jp-jp",
	"pt": "br-pt",
}

func buildDuckDuckGoForm(query string, opts den.SearchOptions) url.Values {
	form := url.Values{}
	if site := strings.TrimSpace(opts.SiteFilter); site != "" {
		query = fmt.Sprintf("site:%s %s", site, query)
	}
	form.Set("q", query)
	if opts.Lang != "" {
		region, ok := ddgRegions[strings.ToLower(opts.Lang)]
		if !ok {
			region = strings.ToLower(opts.Lang)
		}
		form.Set("kl", region)
	}
	if opts.Safe {
		form.Set("kp", "1")
	}
	return form
}

// ParseDuckDuckGoResults reads up to limit results from a DuckDuckGo lite
// results page. Redirect links are unwrapped and non-HTTP links skipped.
func ParseDuckDuckGoResults(doc *goquery.Document, limit int) []den.Page {
	snippets := doc.Find("td.result-snippet").Map(func(_ int, s *goquery.Selection) string {
		return strings.Join(strings.Fields(s.Text()), " ")
	})

	pages := []den.Page{}
	seen := make(map[string]bool)
	doc.Find("a.result-link").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link := unwrapDuckDuckGoLink(href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true

		page := den.Page{URL: link, Title: strings.TrimSpace(s.Text())}
		if i < len(snippets) {
			page.Snippet = snippets[i]
		}
		pages = append(pages, page)
		return len(pages) < limit
	})
	return pages
}

// unwrapDuckDuckGoLink returns the target of a DuckDuckGo redirect link, or
// href itself for direct links. Returns "" for anything but absolute HTTP(S).
func unwrapDuckDuckGoLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return unwrapDuckDuckGoLink(target)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
