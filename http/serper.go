package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/isaacchacko/den"
	"golang.org/x/time/rate"
)

// DefaultSerperEndpoint is the Serper Google search API.
const DefaultSerperEndpoint = "https://google.serper.dev/search"

// Serper result bounds enforced by the API.
const (
	serperMinResults = 1
	serperMaxResults = 100
)

var _ den.Searcher = (*Serper)(nil)

// Serper implements den.Searcher using the Serper Google search API.
type Serper struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// SerperOption configures a Serper.
type SerperOption func(*Serper)

// WithSerperEndpoint overrides the API endpoint.
func WithSerperEndpoint(endpoint string) SerperOption {
	return func(s *Serper) {
		s.endpoint = endpoint
	}
}

// WithSerperClient sets the HTTP client.
func WithSerperClient(client *http.Client) SerperOption {
	return func(s *Serper) {
		s.client = client
	}
}

// WithSerperRate limits requests to rps per second.
func WithSerperRate(rps float64) SerperOption {
	return func(s *Serper) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewSerper creates a Serper searcher for apiKey.
func NewSerper(apiKey string, opts ...SerperOption) *Serper {
	s := &Serper{
		apiKey:   apiKey,
		endpoint: DefaultSerperEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type serperRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	GL   string `json:"gl,omitempty"`
	HL   string `json:"hl,omitempty"`
	Safe string `json:"safe,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search runs query and returns at most opts.Limit organic results.
// Returns ECOLLABORATOR for API failures.
func (s *Serper) Search(ctx context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, den.Errorf(den.EINVALID, "search query required")
	}
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, den.Errorf(den.EINVALID, "serper: API key is missing")
	}

	body, err := json.Marshal(buildSerperRequest(query, opts))
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "serper: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, den.Errorf(den.ECOLLABORATOR, "serper http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "serper: decode response: %v", err)
	}

	limit := serperLimit(opts.Limit)
	pages := make([]den.Page, 0, min(len(payload.Organic), limit))
	for _, r := range payload.Organic {
		if r.Link == "" {
			continue
		}
		pages = append(pages, den.Page{URL: r.Link, Title: r.Title, Snippet: r.Snippet})
		if len(pages) == limit {
			break
		}
	}
	return pages, nil
}

// buildSerperRequest maps search options onto a Serper request body.
func buildSerperRequest(query string, opts den.SearchOptions) serperRequest {
	req := serperRequest{
		Q:   ApplySiteFilter(query, opts.SiteFilter),
		Num: serperLimit(opts.Limit),
	}
	req.HL, req.GL = SerperLocale(opts.Lang)
	if opts.Safe {
		req.Safe = "active"
	}
	return req
}

// serperCountries maps language codes to the country whose results Serper
// should favor.
var serperCountries = map[string]string{
	"en": "us",
	"de": "de",
	"fr": "fr",
	"es": "es",
	"it": "it",
	"ja": "jp",
	"pt": "br",
}

// SerperLocale splits lang into Serper's hl and gl parameters. A region
// suffix ("en-GB") names the country; otherwise the country comes from a
// fixed table, and unknown languages send no country.
func SerperLocale(lang string) (hl, gl string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "", ""
	}
	if base, region, ok := strings.Cut(strings.ReplaceAll(lang, "_", "-"), "-"); ok && base != "" && region != "" {
		return base, region
	}
	return lang, serperCountries[lang]
}

// ApplySiteFilter restricts query to site when site is set.
func ApplySiteFilter(query, site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return query
	}
	return fmt.Sprintf("site:%s %s", site, query)
}

func serperLimit(n int) int {
	if n <= 0 {
		return 10
	}
	return min(max(n, serperMinResults), serperMaxResults)
}
