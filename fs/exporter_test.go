package fs_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/isaacchacko/den"
	"github.com/isaacchacko/den/fs"
	"github.com/isaacchacko/den/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoot() *den.RootNode {
	root := den.NewRootNode("locks")
	root.AddPage("https://example.com/locks")
	child := den.NewChildNode(den.Concept{Title: "Mutex"}, "https://example.com/mutex", 0.8)
	child.AddPage("https://example.com/locks")
	root.AppendChildren(child)
	return root
}

func cacheOf(pages ...*den.PageContent) *mock.PageCache {
	return &mock.PageCache{
		FindPagesFn: func(ctx context.Context, urls []string) ([]*den.PageContent, error) {
			var out []*den.PageContent
			for _, u := range urls {
				for _, p := range pages {
					if p.URL == u {
						out = append(out, p)
					}
				}
			}
			return out, nil
		},
	}
}

func TestTreeURLs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"https://example.com/locks", "https://example.com/mutex"}, fs.TreeURLs(sampleRoot()))
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("writes tree graph and cached pages", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "snapshot")
		exp := fs.NewExporter(cacheOf(
			&den.PageContent{URL: "https://example.com/locks", Title: "Locks", Content: "# Locks"},
		))
		graph := &den.Graph{Stats: den.GraphStats{TotalNodes: 2, TotalEdges: 1}}

		res, err := exp.Export(context.Background(), dir, sampleRoot(), graph)

		require.NoError(t, err)
		assert.Equal(t, dir, res.Dir)
		assert.Equal(t, 1, res.Pages)

		tree, err := os.ReadFile(filepath.Join(dir, fs.TreeFile))
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(tree, &decoded))
		assert.Equal(t, "locks", decoded["query"])

		_, err = os.Stat(filepath.Join(dir, fs.GraphFile))
		require.NoError(t, err)

		page, err := os.ReadFile(filepath.Join(dir, "pages", "example.com", "locks.md"))
		require.NoError(t, err)
		assert.Contains(t, string(page), "# Locks")
	})

	t.Run("skips pages without a cache", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "snapshot")

		res, err := fs.NewExporter(nil).Export(context.Background(), dir, sampleRoot(), nil)

		require.NoError(t, err)
		assert.Zero(t, res.Pages)
		_, err = os.Stat(filepath.Join(dir, fs.GraphFile))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("leaves no directory behind on cache failure", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		dir := filepath.Join(base, "snapshot")
		exp := fs.NewExporter(&mock.PageCache{
			FindPagesFn: func(ctx context.Context, urls []string) ([]*den.PageContent, error) {
				return nil, errors.New("disk I/O error")
			},
		})

		_, err := exp.Export(context.Background(), dir, sampleRoot(), nil)

		require.Error(t, err)
		entries, err := os.ReadDir(base)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects nil root", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewExporter(nil).Export(context.Background(), t.TempDir(), nil, nil)

		assert.Equal(t, den.EINVALID, den.ErrorCode(err))
	})
}
