package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/sitemapper"
	smhttp "github.com/fwojciec/sitemapper/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = "<html><body>" + strings.Repeat("<p>content</p>", 50) + "</body></html>"

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		fetcher := smhttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, page, html)
	})

	t.Run("sends browser-like headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		_, err := smhttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		h := <-headers
		assert.Equal(t, smhttp.UserAgent, h.Get("User-Agent"))
		assert.Contains(t, h.Get("Accept"), "text/html")
		assert.Equal(t, "en-US,en;q=0.9", h.Get("Accept-Language"))
	})

	t.Run("rejects bodies below the minimum size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>tiny</html>"))
		}))
		defer server.Close()

		_, err := smhttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.Error(t, err)

		html, err := smhttp.NewFetcher(smhttp.WithMinBodySize(0)).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html>tiny</html>", html)
	})

	t.Run("requires a body longer than the minimum size", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			size    int
			wantErr bool
		}{
			{name: "exactly the minimum", size: smhttp.DefaultMinBodySize, wantErr: true},
			{name: "one byte over", size: smhttp.DefaultMinBodySize + 1, wantErr: false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				body := strings.Repeat("x", tt.size)
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(body))
				}))
				defer server.Close()

				html, err := smhttp.NewFetcher().Fetch(context.Background(), server.URL)
				if tt.wantErr {
					require.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Len(t, html, tt.size)
			})
		}
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		fetcher := smhttp.NewFetcher(smhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := smhttp.NewFetcher().Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("returns error for non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		_, err := smhttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("returns invalid error for malformed URL", func(t *testing.T) {
		t.Parallel()

		_, err := smhttp.NewFetcher().Fetch(context.Background(), "http://[::1")
		require.Error(t, err)
		assert.Equal(t, sitemapper.EINVALID, sitemapper.ErrorCode(err))
	})
}
