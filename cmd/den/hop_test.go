package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/isaacchacko/den"
	main "github.com/isaacchacko/den/cmd/den"
	"github.com/isaacchacko/den/mock"
	"github.com/isaacchacko/den/session"
	"github.com/isaacchacko/den/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hopDeps(t *testing.T, searcher den.Searcher) (*main.Dependencies, *bytes.Buffer) {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	stdout := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   &bytes.Buffer{},
		Sessions: session.NewRegistry(sqlite.NewSessionService(db), searcher),
	}, stdout
}

func threeResults() *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(_ context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
			return []den.Page{
				{URL: "https://example.com/0", Title: "Zero", Snippet: "first"},
				{URL: "https://example.com/1", Title: "One"},
				{URL: "https://example.com/2", Title: "Two"},
			}, nil
		},
	}
}

func TestHopCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the first page", func(t *testing.T) {
		t.Parallel()

		deps, stdout := hopDeps(t, threeResults())

		require.NoError(t, (&main.HopCmd{Query: "locks"}).Run(deps))

		assert.Equal(t, "[1/3] Zero\nhttps://example.com/0\nfirst\n", stdout.String())
	})

	t.Run("steps forward", func(t *testing.T) {
		t.Parallel()

		deps, stdout := hopDeps(t, threeResults())

		require.NoError(t, (&main.HopCmd{Query: "locks", Steps: 2}).Run(deps))

		assert.Equal(t, "[3/3] Two\nhttps://example.com/2\n", stdout.String())
	})

	t.Run("steps backwards with wraparound", func(t *testing.T) {
		t.Parallel()

		deps, stdout := hopDeps(t, threeResults())

		require.NoError(t, (&main.HopCmd{Query: "locks", Steps: -1}).Run(deps))

		assert.Contains(t, stdout.String(), "[3/3] Two")
	})

	t.Run("lists all pages with the cursor marked", func(t *testing.T) {
		t.Parallel()

		deps, stdout := hopDeps(t, threeResults())

		require.NoError(t, (&main.HopCmd{Query: "locks", Steps: 4, All: true}).Run(deps))

		assert.Equal(t,
			"   1  https://example.com/0  Zero\n"+
				">  2  https://example.com/1  One\n"+
				"   3  https://example.com/2  Two\n",
			stdout.String())
	})

	t.Run("passes search flags", func(t *testing.T) {
		t.Parallel()

		var got den.SearchOptions
		deps, _ := hopDeps(t, &mock.Searcher{
			SearchFn: func(_ context.Context, query string, opts den.SearchOptions) ([]den.Page, error) {
				got = opts
				return []den.Page{{URL: "https://example.com"}}, nil
			},
		})

		cmd := &main.HopCmd{Query: "locks", SearchFlags: main.SearchFlags{Lang: "en", Safe: true, Site: "go.dev"}}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, den.SearchOptions{Limit: session.DefaultLimit, Lang: "en", Safe: true, SiteFilter: "go.dev"}, got)
	})

	t.Run("reports empty results", func(t *testing.T) {
		t.Parallel()

		deps, stdout := hopDeps(t, &mock.Searcher{
			SearchFn: func(context.Context, string, den.SearchOptions) ([]den.Page, error) {
				return nil, nil
			},
		})

		require.NoError(t, (&main.HopCmd{Query: "zzzz", Steps: 1}).Run(deps))

		assert.Contains(t, stdout.String(), `No results for "zzzz"`)
	})
}
