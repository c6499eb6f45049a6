package mock

import (
	"context"

	"github.com/isaacchacko/den"
)

var _ den.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of den.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, opts den.SearchOptions) ([]den.Page, error)
}

func (s *Searcher) Search(ctx context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
	return s.SearchFn(ctx, query, opts)
}
