// Package accrete grows den trees: it merges the concepts of visited pages
// into nodes and owns the single active den of a process.
package accrete

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/isaacchacko/den"
	"golang.org/x/sync/errgroup"
)

// Defaults for Engine fields left at their zero value.
const (
	DefaultCallTimeout      = 60 * time.Second
	DefaultScoreConcurrency = 4
	DefaultBurrowPages      = 5
)

// Engine merges pages into den nodes through its collaborators.
//
// Ingest is not safe to run concurrently on the same node. Den serializes
// all mutation of the tree it owns.
type Engine struct {
	Extractor    den.ConceptExtractor
	Scorer       den.SimilarityScorer
	Deduplicator den.ConceptDeduplicator
	Summarizer   den.Summarizer // optional
	Searcher     den.Searcher
	Logger       *slog.Logger

	// CallTimeout bounds every collaborator call except extraction.
	CallTimeout time.Duration

	// ExtractTimeout bounds one concept extraction, which covers reading
	// the page (fetch retries and rate limit waits included) and the model
	// call. Defaults to twice the call timeout.
	ExtractTimeout time.Duration

	// ScoreConcurrency bounds concurrent scorer calls for one page.
	ScoreConcurrency int

	// BurrowPages is the number of search results ingested by BurrowIntoChild.
	BurrowPages int
}

// IngestResult holds the outcome of one Ingest call.
type IngestResult struct {
	Node            den.Node
	ConceptsAdded   int
	ConceptsRemoved int
	ChildrenCreated int
}

// BurrowResult holds the outcome of a burrow into a child.
type BurrowResult struct {
	Child           *den.ChildNode
	Pages           []den.Page
	PagesIngested   int
	PagesFailed     int
	ChildrenCreated int
}

// Ingest merges the concepts of the page at rawURL into node.
//
// Concepts are extracted, each new concept becomes a child scored against
// the node's identity, the node's concept list is deduplicated, the URL is
// recorded, and for a root the summary is refreshed. Scoring and summary
// failures are absorbed. Extraction failures return EEXTRACTION with node
// untouched; deduplication failures return ECOLLABORATOR after the new
// children have already been appended.
func (e *Engine) Ingest(ctx context.Context, node den.Node, rawURL string) (*IngestResult, error) {
	if isNil(node) {
		return nil, den.Errorf(den.EINVALID, "node required")
	}
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	concepts, err := e.extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	scores := e.scoreAll(ctx, node.Identity(), concepts)
	children := make([]*den.ChildNode, 0, len(concepts))
	for i, c := range concepts {
		children = append(children, den.NewChildNode(c, rawURL, scores[i]))
	}
	node.AppendChildren(children...)
	for _, c := range children {
		ResolveOriginScore(c)
	}

	combined := append(node.Concepts(), concepts...)
	deduped, err := e.deduplicate(ctx, combined)
	if err != nil {
		return nil, err
	}
	node.SetConcepts(deduped.Concepts)

	node.AddPage(rawURL)

	if root, ok := node.(*den.RootNode); ok {
		e.refreshSummary(ctx, root)
	}

	return &IngestResult{
		Node:            node,
		ConceptsAdded:   len(concepts),
		ConceptsRemoved: deduped.RemovedCount,
		ChildrenCreated: len(children),
	}, nil
}

// BurrowIntoChild marks the child titled title as a den, searches for
// "what is <title>" and ingests each result into the child in order.
// Pages that fail to ingest are logged and skipped. opts shape the search;
// its Limit is replaced by BurrowPages.
// Returns ENOTFOUND if root has no such child.
func (e *Engine) BurrowIntoChild(ctx context.Context, root *den.RootNode, title string, opts den.SearchOptions) (*BurrowResult, error) {
	if root == nil {
		return nil, den.Errorf(den.EINVALID, "root required")
	}
	if title == "" {
		return nil, den.Errorf(den.EINVALID, "child title required")
	}

	child := den.FindChild(root, title)
	if child == nil {
		return nil, den.Errorf(den.ENOTFOUND, "child %q not found", title)
	}
	child.MarkDen()

	opts.Limit = e.burrowPages()
	pages, err := e.search(ctx, BurrowQuery(title), opts)
	if err != nil {
		return nil, err
	}

	result := &BurrowResult{Child: child, Pages: pages}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := e.Ingest(ctx, child, p.URL)
		if err != nil {
			result.PagesFailed++
			e.logger().Warn("burrow page skipped",
				"child", title,
				"url", p.URL,
				"err", err,
			)
			continue
		}
		result.PagesIngested++
		result.ChildrenCreated += res.ChildrenCreated
	}
	return result, nil
}

// SendToDen ingests rawURL into root and records it as explicitly added.
func (e *Engine) SendToDen(ctx context.Context, root *den.RootNode, rawURL string) (*IngestResult, error) {
	if root == nil {
		return nil, den.Errorf(den.EINVALID, "root required")
	}
	res, err := e.Ingest(ctx, root, rawURL)
	if err != nil {
		return nil, err
	}
	root.AddDenPage(rawURL)
	return res, nil
}

// BurrowQuery is the search query used to deep-dive into a concept.
func BurrowQuery(title string) string {
	return "what is " + title
}

// ValidateURL returns EINVALID unless rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return den.Errorf(den.EINVALID, "url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return den.Errorf(den.EINVALID, "invalid url %q: %v", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return den.Errorf(den.EINVALID, "invalid url %q: want absolute http(s) url", rawURL)
	}
	return nil
}

// ResolveOriginScore sets c's similarity to the root query from its
// ancestors: a child of the root takes its own comparison score, a deeper
// child multiplies its parent's origin score by its own comparison score.
func ResolveOriginScore(c *den.ChildNode) {
	switch p := c.Parent().(type) {
	case *den.ChildNode:
		c.SetComparisonScoreToOrigin(p.ComparisonScoreToOrigin() * c.ComparisonScore())
	default:
		c.SetComparisonScoreToOrigin(c.ComparisonScore())
	}
}

func (e *Engine) extract(ctx context.Context, rawURL string) ([]den.Concept, error) {
	ctx, cancel := context.WithTimeout(ctx, e.extractTimeout())
	defer cancel()

	concepts, err := e.Extractor.ExtractConcepts(ctx, rawURL)
	if err != nil {
		if den.ErrorCode(err) == den.EEXTRACTION {
			return nil, err
		}
		return nil, den.Errorf(den.EEXTRACTION, "extract concepts from %s: %v", rawURL, err)
	}
	return concepts, nil
}

// scoreAll scores every concept title against identity. A failed score is 0.
func (e *Engine) scoreAll(ctx context.Context, identity string, concepts []den.Concept) []float64 {
	scores := make([]float64, len(concepts))
	if e.Scorer == nil {
		return scores
	}

	var g errgroup.Group
	g.SetLimit(e.scoreConcurrency())
	for i, c := range concepts {
		g.Go(func() error {
			scores[i] = e.score(ctx, c.Title, identity)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}

func (e *Engine) score(ctx context.Context, title, identity string) float64 {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	score, err := e.Scorer.Score(ctx, title, identity)
	if err != nil {
		e.logger().Warn("similarity score defaulted to 0",
			"concept", title,
			"against", identity,
			"err", err,
		)
		return 0
	}
	return den.ScoreClamp(score)
}

func (e *Engine) deduplicate(ctx context.Context, concepts []den.Concept) (*den.DedupeResult, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	res, err := e.Deduplicator.Deduplicate(ctx, concepts)
	if err != nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "deduplicate concepts: %v", err)
	}
	if res == nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "deduplicate concepts: empty result")
	}
	return res, nil
}

func (e *Engine) refreshSummary(ctx context.Context, root *den.RootNode) {
	if e.Summarizer == nil {
		return
	}
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	summary, err := e.Summarizer.Summarize(ctx, root.Pages(), root.Concepts(), root.Query())
	if err == nil && summary == nil {
		err = fmt.Errorf("empty summary")
	}
	if err != nil {
		e.logger().Warn("summary kept from previous ingest",
			"query", root.Query(),
			"err", err,
		)
		return
	}
	root.SetSummary(summary)
}

func (e *Engine) search(ctx context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
	if e.Searcher == nil {
		return nil, den.Errorf(den.EINTERNAL, "no searcher configured")
	}
	ctx, cancel := e.callContext(ctx)
	defer cancel()

	pages, err := e.Searcher.Search(ctx, query, opts)
	if err != nil {
		return nil, den.Errorf(den.ECOLLABORATOR, "search %q: %v", query, err)
	}
	if opts.Limit > 0 && len(pages) > opts.Limit {
		pages = pages[:opts.Limit]
	}
	return pages, nil
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (e *Engine) extractTimeout() time.Duration {
	if e.ExtractTimeout > 0 {
		return e.ExtractTimeout
	}
	if e.CallTimeout > 0 {
		return 2 * e.CallTimeout
	}
	return 2 * DefaultCallTimeout
}

func (e *Engine) scoreConcurrency() int {
	if e.ScoreConcurrency <= 0 {
		return DefaultScoreConcurrency
	}
	return e.ScoreConcurrency
}

func (e *Engine) burrowPages() int {
	if e.BurrowPages <= 0 {
		return DefaultBurrowPages
	}
	return e.BurrowPages
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n den.Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *den.RootNode:
		return v == nil
	case *den.ChildNode:
		return v == nil
	}
	return false
}
