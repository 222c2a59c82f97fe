package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteMap(url string, started time.Time) *sitemapper.SiteMap {
	m := sitemapper.NewSiteMap(url, "example.com")
	m.State = sitemapper.StateCompleted
	m.StartedAt = started
	m.FinishedAt = started.Add(time.Minute)
	m.AddPage(url)
	m.AddPage(url + "/search")
	m.AddElement(sitemapper.Element{
		Type:        sitemapper.ElementSearch,
		Text:        "Search products",
		Selector:    "#q",
		PageURL:     url,
		Attributes:  map[string]string{"id": "q", "type": "search"},
		InputType:   "search",
		Placeholder: "Search products",
		Visible:     true,
		Enabled:     true,
	})
	m.AddElement(sitemapper.Element{
		Type:     sitemapper.ElementSort,
		Text:     "Sort by",
		Selector: "select[name='sort']",
		PageURL:  url + "/search",
		Options:  []string{"Price", "Newest"},
		Visible:  false,
		Enabled:  true,
	})
	m.Log("[0.0s] Starting crawl")
	m.Log("[1.2s] Done: 2 pages, 2 elements (1.2s)")
	return m
}

func TestSiteMapService_SaveSiteMap(t *testing.T) {
	t.Parallel()

	t.Run("assigns an id and stores the full run", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSiteMapService(openDB(t))
		started := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
		m := newSiteMap("https://example.com", started)

		require.NoError(t, svc.SaveSiteMap(ctx, m))
		require.NotEmpty(t, m.ID)

		got, err := svc.FindSiteMapByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.URL)
		assert.Equal(t, "example.com", got.Domain)
		assert.Equal(t, sitemapper.StateCompleted, got.State)
		assert.True(t, got.StartedAt.Equal(started))
		assert.True(t, got.FinishedAt.Equal(started.Add(time.Minute)))
		assert.Equal(t, m.Pages(), got.Pages())
		assert.Equal(t, m.Elements(), got.Elements())
		assert.Equal(t, m.ExplorationLog(), got.ExplorationLog())
	})

	t.Run("replaces the contents of an existing run", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSiteMapService(openDB(t))
		m := newSiteMap("https://example.com", time.Now().UTC())
		require.NoError(t, svc.SaveSiteMap(ctx, m))

		m.AddPage("https://example.com/cart")
		m.State = sitemapper.StateStopped
		require.NoError(t, svc.SaveSiteMap(ctx, m))

		got, err := svc.FindSiteMapByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.PagesCrawled())
		assert.Equal(t, sitemapper.StateStopped, got.State)

		runs, err := svc.FindSiteMaps(ctx)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("keeps only the recent exploration log", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSiteMapService(openDB(t))
		m := sitemapper.NewSiteMap("https://example.com", "example.com")
		for i := range sitemapper.RecentLogSize + 10 {
			m.Log(time.Duration(i).String())
		}

		require.NoError(t, svc.SaveSiteMap(ctx, m))

		got, err := svc.FindSiteMapByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.RecentLog(), got.ExplorationLog())
	})

	t.Run("rejects a site map without a URL", func(t *testing.T) {
		t.Parallel()

		err := sqlite.NewSiteMapService(openDB(t)).SaveSiteMap(context.Background(), &sitemapper.SiteMap{})

		assert.Equal(t, sitemapper.EINVALID, sitemapper.ErrorCode(err))
	})
}

func TestSiteMapService_FindSiteMapByID(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for an unknown run", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewSiteMapService(openDB(t)).FindSiteMapByID(context.Background(), "missing")

		assert.Equal(t, sitemapper.ENOTFOUND, sitemapper.ErrorCode(err))
	})
}

func TestSiteMapService_FindSiteMaps(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first with counts", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		svc := sqlite.NewSiteMapService(openDB(t))
		older := newSiteMap("https://old.example.com", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		newer := newSiteMap("https://new.example.com", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, svc.SaveSiteMap(ctx, older))
		require.NoError(t, svc.SaveSiteMap(ctx, newer))

		runs, err := svc.FindSiteMaps(ctx)

		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, newer.ID, runs[0].ID)
		assert.Equal(t, "https://new.example.com", runs[0].URL)
		assert.Equal(t, 2, runs[0].PagesCrawled)
		assert.Equal(t, 2, runs[0].ElementsDiscovered)
		assert.Equal(t, sitemapper.StateCompleted, runs[0].State)
		assert.Equal(t, older.ID, runs[1].ID)
	})

	t.Run("returns no runs for an empty database", func(t *testing.T) {
		t.Parallel()

		runs, err := sqlite.NewSiteMapService(openDB(t)).FindSiteMaps(context.Background())

		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}
