package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sitemapper"
	main "github.com/fwojciec/sitemapper/cmd/sitemapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMain returns a Main backed by files in a temporary directory and a
// crawler that always returns shopSiteMap.
func testMain(t *testing.T, catalogStore string) *main.Main {
	t.Helper()
	dir := t.TempDir()
	m := main.NewMain()
	m.Config = &main.Config{
		DBPath:             filepath.Join(dir, "sitemapper.db"),
		Catalog:            filepath.Join(dir, "patterns.yaml"),
		CatalogStore:       catalogStore,
		MaxPages:           30,
		LinksPerPage:       5,
		MaxLinks:           100,
		RequestsPerSecond:  5,
		HappyPathThreshold: 0.7,
		PartialThreshold:   0.3,
		Embedder:           main.EmbedderNone,
	}
	m.Crawler = staticCrawler(shopSiteMap(), nil)
	return m
}

func run(t *testing.T, m *main.Main, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("crawls, lists and rescores a saved run", func(t *testing.T) {
		t.Parallel()

		m := testMain(t, main.CatalogStoreFile)
		export := filepath.Join(t.TempDir(), "shop.json")

		stdout, stderr, err := run(t, m, "crawl", "https://shop.example.com", "--discover", "--partial", "--output", export)
		require.NoError(t, err)
		assert.Contains(t, stdout, "2 pages, 3 elements")
		assert.Contains(t, stdout, "Discovered")
		assert.Contains(t, stdout, "Login")
		assert.Contains(t, stderr, "built-in patterns")
		_, err = os.Stat(export)
		require.NoError(t, err)

		stdout, _, err = run(t, m, "runs")
		require.NoError(t, err)
		assert.Contains(t, stdout, "https://shop.example.com")
		assert.Contains(t, stdout, "completed")

		stdout, _, err = run(t, m, "discover", export, "--json", "--partial")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"pattern_id": "login"`)
	})

	t.Run("manages the catalog in a YAML file", func(t *testing.T) {
		t.Parallel()

		m := testMain(t, main.CatalogStoreFile)

		stdout, _, err := run(t, m, "patterns", "init")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Wrote 11 core patterns")

		data, err := os.ReadFile(m.Config.Catalog)
		require.NoError(t, err)
		assert.Contains(t, string(data), "core_patterns:")

		stdout, _, err = run(t, m, "patterns", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "add_to_cart")

		_, _, err = run(t, m, "patterns", "init")
		require.Error(t, err)
	})

	t.Run("manages the catalog in sqlite", func(t *testing.T) {
		t.Parallel()

		m := testMain(t, main.CatalogStoreSQLite)
		pattern := filepath.Join(t.TempDir(), "wishlist.json")
		require.NoError(t, os.WriteFile(pattern, []byte(`{"id": "wishlist", "elements": ["wishlist"]}`), 0644))

		_, _, err := run(t, m, "patterns", "stage", pattern)
		require.NoError(t, err)

		stdout, _, err := run(t, m, "patterns", "pending")
		require.NoError(t, err)
		assert.Contains(t, stdout, "wishlist")

		_, _, err = run(t, m, "patterns", "approve", "wishlist")
		require.NoError(t, err)

		stdout, _, err = run(t, m, "patterns", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "learned")
		_, err = os.Stat(m.Config.Catalog)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects inverted discovery thresholds", func(t *testing.T) {
		t.Parallel()

		m := testMain(t, main.CatalogStoreFile)

		_, _, err := run(t, m, "discover", "run-1", "--threshold", "0.2")

		require.Error(t, err)
	})

	t.Run("applies zero thresholds given as flags", func(t *testing.T) {
		t.Parallel()

		m := testMain(t, main.CatalogStoreFile)
		export := filepath.Join(t.TempDir(), "shop.json")
		_, _, err := run(t, m, "crawl", "https://shop.example.com", "--output", export)
		require.NoError(t, err)

		_, _, err = run(t, m, "discover", export, "--threshold", "0")
		require.Error(t, err)
		assert.Equal(t, sitemapper.EINVALID, sitemapper.ErrorCode(err))

		_, _, err = run(t, m, "discover", export, "--threshold", "0", "--partial-threshold", "0", "--json")
		require.NoError(t, err)
	})
}
