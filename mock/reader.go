package mock

import (
	"context"

	"github.com/isaacchacko/den"
)

var _ den.PageReader = (*PageReader)(nil)

// PageReader is a mock implementation of den.PageReader.
type PageReader struct {
	ReadFn func(ctx context.Context, url string) (*den.PageContent, error)
}

func (r *PageReader) Read(ctx context.Context, url string) (*den.PageContent, error) {
	return r.ReadFn(ctx, url)
}

var _ den.PageCache = (*PageCache)(nil)

// PageCache is a mock implementation of den.PageCache.
type PageCache struct {
	FindPageFn  func(ctx context.Context, url string) (*den.PageContent, error)
	SavePageFn  func(ctx context.Context, page *den.PageContent) error
	FindPagesFn func(ctx context.Context, urls []string) ([]*den.PageContent, error)
}

func (c *PageCache) FindPage(ctx context.Context, url string) (*den.PageContent, error) {
	return c.FindPageFn(ctx, url)
}

func (c *PageCache) SavePage(ctx context.Context, page *den.PageContent) error {
	return c.SavePageFn(ctx, page)
}

func (c *PageCache) FindPages(ctx context.Context, urls []string) ([]*den.PageContent, error) {
	return c.FindPagesFn(ctx, urls)
}
