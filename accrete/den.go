package accrete

import (
	"context"
	"strings"
	"sync"

	"github.com/isaacchacko/den"
)

// Defaults for Den fields left at their zero value.
const (
	DefaultSearchLimit = 10
	DefaultSeedPages   = 3
)

// Den owns the single active root of a process. Every method holds the den
// lock for its whole duration, so ingestions never interleave.
type Den struct {
	Engine *Engine

	// SearchLimit is the number of results fetched when a den starts.
	SearchLimit int

	// SeedPages is the number of those results ingested into the new root.
	SeedPages int

	mu   sync.Mutex
	root *den.RootNode
}

// NewDen returns an empty Den backed by engine.
func NewDen(engine *Engine) *Den {
	return &Den{Engine: engine}
}

// StartResult holds the outcome of starting a den.
type StartResult struct {
	Root          *den.RootNode
	Pages         []den.Page
	PagesIngested int
	PagesFailed   int
}

// Start searches query, discards the current root, and builds a new root
// from the first results. Returns ENOTFOUND when the search yields nothing,
// in which case the current root is kept.
func (d *Den) Start(ctx context.Context, query string, opts den.SearchOptions) (*StartResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, den.Errorf(den.EINVALID, "query required")
	}
	if opts.Limit <= 0 {
		opts.Limit = d.searchLimit()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pages, err := d.Engine.search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, den.Errorf(den.ENOTFOUND, "no results for %q", query)
	}

	root := den.NewRootNode(query)
	d.root = root

	result := &StartResult{Root: root, Pages: pages}
	for _, p := range pages[:min(len(pages), d.seedPages())] {
		if _, err := d.Engine.Ingest(ctx, root, p.URL); err != nil {
			result.PagesFailed++
			d.Engine.logger().Warn("seed page skipped",
				"query", query,
				"url", p.URL,
				"err", err,
			)
			continue
		}
		result.PagesIngested++
	}
	return result, nil
}

// Clear discards the active root.
func (d *Den) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = nil
}

// Root returns the active root, or nil when no den has been started.
// The returned tree must only be read while no den operation is running;
// use View for a guarded read.
func (d *Den) Root() *den.RootNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root
}

// View calls fn with the active root while holding the den lock.
// Returns ENOTFOUND when no den has been started.
func (d *Den) View(fn func(root *den.RootNode) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return errNoDen()
	}
	return fn(d.root)
}

// Ingest merges rawURL into the node titled title, or into the root when
// title is empty.
func (d *Den) Ingest(ctx context.Context, title, rawURL string) (*IngestResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return nil, errNoDen()
	}

	var node den.Node = d.root
	if title != "" {
		child := den.FindChild(d.root, title)
		if child == nil {
			return nil, den.Errorf(den.ENOTFOUND, "child %q not found", title)
		}
		node = child
	}
	return d.Engine.Ingest(ctx, node, rawURL)
}

// Burrow deep-dives into the child titled title, searching with opts.
func (d *Den) Burrow(ctx context.Context, title string, opts den.SearchOptions) (*BurrowResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return nil, errNoDen()
	}
	return d.Engine.BurrowIntoChild(ctx, d.root, title, opts)
}

// SendToDen ingests rawURL into the root and records it as a den page.
func (d *Den) SendToDen(ctx context.Context, rawURL string) (*IngestResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return nil, errNoDen()
	}
	return d.Engine.SendToDen(ctx, d.root, rawURL)
}

func (d *Den) searchLimit() int {
	if d.SearchLimit <= 0 {
		return DefaultSearchLimit
	}
	return d.SearchLimit
}

func (d *Den) seedPages() int {
	if d.SeedPages <= 0 {
		return DefaultSeedPages
	}
	return d.SeedPages
}

func errNoDen() error {
	return den.Errorf(den.ENOTFOUND, "no active den")
}
