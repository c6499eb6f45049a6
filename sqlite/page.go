package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/isaacchacko/den"
)

// Compile-time interface verification.
var _ den.PageCache = (*PageCache)(nil)

// PageCache implements den.PageCache using SQLite.
type PageCache struct {
	db *DB
}

// NewPageCache creates a new PageCache.
func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db}
}

// FindPage returns the cached page for url.
func (c *PageCache) FindPage(ctx context.Context, url string) (*den.PageContent, error) {
	var page den.PageContent
	var fetchedAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT url, title, content, content_hash, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&page.URL, &page.Title, &page.Content, &page.ContentHash, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, den.Errorf(den.ENOTFOUND, "page not cached: %s", url)
	}
	if err != nil {
		return nil, err
	}

	page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SavePage inserts or replaces the cached page. ContentHash and FetchedAt
// are filled in when unset.
func (c *PageCache) SavePage(ctx context.Context, page *den.PageContent) error {
	if page.URL == "" {
		return den.Errorf(den.EINVALID, "page url required")
	}
	if page.ContentHash == "" {
		page.ContentHash = hashContent(page.Content)
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pages (url, title, content, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, page.URL, page.Title, page.Content, page.ContentHash, formatTime(page.FetchedAt))

	return err
}

// FindPages returns cached pages for urls in the order given, skipping misses.
func (c *PageCache) FindPages(ctx context.Context, urls []string) ([]*den.PageContent, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	var query strings.Builder
	args := make([]any, 0, len(urls))
	query.WriteString("SELECT url, title, content, content_hash, fetched_at FROM pages WHERE url IN (")
	for i, u := range urls {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("?")
		args = append(args, u)
	}
	query.WriteString(")")

	rows, err := c.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byURL := make(map[string]*den.PageContent, len(urls))
	for rows.Next() {
		var page den.PageContent
		var fetchedAt string
		if err := rows.Scan(&page.URL, &page.Title, &page.Content, &page.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}
		if page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}
		byURL[page.URL] = &page
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pages := make([]*den.PageContent, 0, len(byURL))
	for _, u := range urls {
		if p, ok := byURL[u]; ok {
			pages = append(pages, p)
			delete(byURL, u)
		}
	}
	return pages, nil
}
