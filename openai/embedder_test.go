package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *openai.Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return openai.NewEmbedder(openai.NewClient("test-key", srv.URL+"/v1"), openai.WithModel("test-embedding"))
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns the embedding of the text", func(t *testing.T) {
		t.Parallel()

		var got struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		var path, auth string
		e := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"object": "list",
				"data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1]}],
				"model": "test-embedding",
				"usage": {"prompt_tokens": 3, "total_tokens": 3}
			}`))
		})

		vec, err := e.Embed(context.Background(), "Search products")

		require.NoError(t, err)
		assert.Equal(t, []float32{0.25, -0.5, 1}, vec)
		assert.Equal(t, "/v1/embeddings", path)
		assert.Equal(t, "Bearer test-key", auth)
		assert.Equal(t, []string{"Search products"}, got.Input)
		assert.Equal(t, "test-embedding", got.Model)
	})

	t.Run("returns an error when the API fails", func(t *testing.T) {
		t.Parallel()

		e := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
		})

		_, err := e.Embed(context.Background(), "Search products")

		require.Error(t, err)
	})

	t.Run("returns an internal error for an empty response", func(t *testing.T) {
		t.Parallel()

		e := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
		})

		_, err := e.Embed(context.Background(), "Search products")

		require.Error(t, err)
		assert.Equal(t, sitemapper.EINTERNAL, sitemapper.ErrorCode(err))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := openai.NewEmbedder(nil).Embed(context.Background(), "")

		assert.Equal(t, sitemapper.EINVALID, sitemapper.ErrorCode(err))
	})

	t.Run("is disabled without a client", func(t *testing.T) {
		t.Parallel()

		e := openai.NewEmbedder(nil)

		assert.False(t, e.Enabled())
		_, err := e.Embed(context.Background(), "Search products")
		assert.Equal(t, sitemapper.ENOTIMPLEMENTED, sitemapper.ErrorCode(err))
	})
}
