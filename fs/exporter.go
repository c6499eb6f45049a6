package fs

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/isaacchacko/den"
)

// Export file names.
const (
	TreeFile  = "tree.json"
	GraphFile = "graph.json"
)

// Exporter writes a den snapshot: the tree, its layout graph and the
// markdown of every cached page the tree references.
type Exporter struct {
	Cache  den.PageCache
	Logger *slog.Logger
}

// NewExporter creates an Exporter reading page content from cache.
// cache may be nil, in which case no pages are written.
func NewExporter(cache den.PageCache) *Exporter {
	return &Exporter{
		Cache:  cache,
		Logger: slog.New(slog.DiscardHandler),
	}
}

// ExportResult summarizes a completed export.
type ExportResult struct {
	Dir   string `json:"dir"`
	Pages int    `json:"pages"`
}

// Export writes root and graph to dir atomically. An existing dir is replaced.
// Pages whose URL cannot be mapped to a file are skipped.
func (e *Exporter) Export(ctx context.Context, dir string, root *den.RootNode, graph *den.Graph) (_ *ExportResult, err error) {
	if root == nil {
		return nil, den.Errorf(den.EINVALID, "nothing to export")
	}
	if dir == "" {
		return nil, den.Errorf(den.EINVALID, "export directory required")
	}

	dir = filepath.Clean(dir)
	store := NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	defer func() {
		if err != nil {
			_ = store.Abort()
		}
	}()

	if err := store.SaveJSON(TreeFile, root); err != nil {
		return nil, err
	}
	if graph != nil {
		if err := store.SaveJSON(GraphFile, graph); err != nil {
			return nil, err
		}
	}

	saved, err := e.savePages(ctx, store, TreeURLs(root))
	if err != nil {
		return nil, err
	}

	if err := store.Commit(); err != nil {
		return nil, err
	}
	return &ExportResult{Dir: store.Dir(), Pages: saved}, nil
}

func (e *Exporter) savePages(ctx context.Context, store *FileStore, urls []string) (int, error) {
	if e.Cache == nil || len(urls) == 0 {
		return 0, nil
	}
	pages, err := e.Cache.FindPages(ctx, urls)
	if err != nil {
		return 0, err
	}

	var saved int
	for _, page := range pages {
		if err := store.SavePage(page); err != nil {
			if den.ErrorCode(err) == den.EINVALID {
				e.Logger.Warn("skipping page", "url", page.URL, "err", err)
				continue
			}
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// TreeURLs returns every page URL in the tree, deduplicated, in pre-order.
func TreeURLs(root *den.RootNode) []string {
	var urls []string
	seen := make(map[string]bool)
	den.Walk(root, func(n den.Node, _ int) bool {
		for _, u := range n.Pages() {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
		return true
	})
	return urls
}
