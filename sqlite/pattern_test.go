package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore(t *testing.T) {
	t.Parallel()

	t.Run("starts with an empty catalog", func(t *testing.T) {
		t.Parallel()

		c, err := sqlite.NewPatternStore(openDB(t)).Catalog(context.Background())

		require.NoError(t, err)
		assert.Empty(t, c.Core)
		assert.Empty(t, c.Learned)
		assert.Empty(t, c.Pending)
	})

	t.Run("saves a catalog in order", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := sqlite.NewPatternStore(openDB(t))

		require.NoError(t, store.Save(ctx, &sitemapper.Catalog{
			Core: []*sitemapper.Pattern{
				{ID: "search", Name: "Search", Elements: []string{"search"}, URLs: []string{"/search"}},
				{ID: "checkout", Description: "Buy things", Elements: []string{"checkout", "cart"}},
				{ID: "login", URLs: []string{"/login"}},
			},
		}))

		c, err := store.Catalog(ctx)
		require.NoError(t, err)
		require.Len(t, c.Core, 3)
		assert.Equal(t, "search", c.Core[0].ID)
		assert.Equal(t, "checkout", c.Core[1].ID)
		assert.Equal(t, "Buy things", c.Core[1].Description)
		assert.Equal(t, []string{"checkout", "cart"}, c.Core[1].Elements)
		assert.Equal(t, []string{}, c.Core[1].URLs)
		assert.Equal(t, "login", c.Core[2].ID)
	})

	t.Run("stages approves and rejects candidates", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := sqlite.NewPatternStore(openDB(t))

		require.NoError(t, store.StagePattern(ctx, &sitemapper.Pattern{ID: "gift_card", Elements: []string{"gift card"}}))
		require.NoError(t, store.StagePattern(ctx, &sitemapper.Pattern{ID: "compare"}))
		assert.Equal(t, sitemapper.ECONFLICT, sitemapper.ErrorCode(store.StagePattern(ctx, &sitemapper.Pattern{ID: "compare"})))

		require.NoError(t, store.ApprovePattern(ctx, &sitemapper.Pattern{ID: "gift_card", Elements: []string{"gift card"}}))
		require.NoError(t, store.RejectPattern(ctx, "compare"))
		assert.Equal(t, sitemapper.ENOTFOUND, sitemapper.ErrorCode(store.RejectPattern(ctx, "compare")))

		c, err := store.Catalog(ctx)
		require.NoError(t, err)
		require.Len(t, c.Learned, 1)
		assert.Equal(t, "gift_card", c.Learned[0].ID)
		assert.True(t, c.Learned[0].Approved)
		assert.Empty(t, c.Pending)
	})

	t.Run("leaves the catalog unchanged when a change fails", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := sqlite.NewPatternStore(openDB(t))
		require.NoError(t, store.StagePattern(ctx, &sitemapper.Pattern{ID: "compare"}))

		err := store.ApprovePattern(ctx, &sitemapper.Pattern{ID: "has space"})

		require.Error(t, err)
		c, err := store.Catalog(ctx)
		require.NoError(t, err)
		assert.Len(t, c.Pending, 1)
		assert.Empty(t, c.Learned)
	})
}
