package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	smhttp "github.com/fwojciec/sitemapper/http"
	"github.com/stretchr/testify/assert"
)

// robotsServer serves body as robots.txt and counts how often it is read.
func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRobotsPolicy_Allowed(t *testing.T) {
	t.Parallel()

	const robots = `# shop rules
User-agent: Googlebot
Disallow: /

User-agent: *
Disallow: /admin
Disallow: /cart
Allow: /cart/share
`

	t.Run("blocks disallowed prefixes for every agent", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusOK, robots)
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.False(t, p.Allowed(context.Background(), srv.URL+"/admin/users"))
		assert.False(t, p.Allowed(context.Background(), srv.URL+"/cart"))
		assert.True(t, p.Allowed(context.Background(), srv.URL+"/products"))
		assert.True(t, p.Allowed(context.Background(), srv.URL))
	})

	t.Run("lets the longest matching allow rule win", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusOK, robots)
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.True(t, p.Allowed(context.Background(), srv.URL+"/cart/share/123"))
	})

	t.Run("ignores groups naming other agents", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusOK, "User-agent: Googlebot\nDisallow: /\n")
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.True(t, p.Allowed(context.Background(), srv.URL+"/anything"))
	})

	t.Run("applies a group shared by several agent lines", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusOK, "User-agent: other\nUser-agent: *\nDisallow: /checkout\n")
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.False(t, p.Allowed(context.Background(), srv.URL+"/checkout/step-1"))
		assert.True(t, p.Allowed(context.Background(), srv.URL+"/products"))
	})

	t.Run("matches wildcard rules against path and query", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /*?sort=\nDisallow: /*.pdf$\n")
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.False(t, p.Allowed(context.Background(), srv.URL+"/shoes?sort=price"))
		assert.True(t, p.Allowed(context.Background(), srv.URL+"/shoes?page=2"))
		assert.False(t, p.Allowed(context.Background(), srv.URL+"/catalog.pdf"))
		assert.True(t, p.Allowed(context.Background(), srv.URL+"/catalog.pdf/view"))
	})

	t.Run("allows everything when robots.txt is missing", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusNotFound, "")
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.True(t, p.Allowed(context.Background(), srv.URL+"/admin"))
	})

	t.Run("disallows everything when robots.txt errors on the server", func(t *testing.T) {
		t.Parallel()

		srv, _ := robotsServer(t, http.StatusServiceUnavailable, "")
		p := smhttp.NewRobotsPolicy(srv.Client())

		assert.False(t, p.Allowed(context.Background(), srv.URL+"/products"))
	})

	t.Run("reads robots.txt once per host", func(t *testing.T) {
		t.Parallel()

		srv, hits := robotsServer(t, http.StatusOK, robots)
		p := smhttp.NewRobotsPolicy(srv.Client())

		p.Allowed(context.Background(), srv.URL+"/a")
		p.Allowed(context.Background(), srv.URL+"/b")
		p.Allowed(context.Background(), srv.URL+"/admin")

		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("retries the origin after a failed request", func(t *testing.T) {
		t.Parallel()

		srv, hits := robotsServer(t, http.StatusOK, robots)
		p := smhttp.NewRobotsPolicy(srv.Client())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.True(t, p.Allowed(ctx, srv.URL+"/admin"))
		assert.False(t, p.Allowed(context.Background(), srv.URL+"/admin"))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("rejects unparseable URLs", func(t *testing.T) {
		t.Parallel()

		p := smhttp.NewRobotsPolicy(nil)

		assert.False(t, p.Allowed(context.Background(), "not a url"))
	})

	t.Run("rejects URLs without a host", func(t *testing.T) {
		t.Parallel()

		p := smhttp.NewRobotsPolicy(nil)

		assert.False(t, p.Allowed(context.Background(), "/relative/path"))
	})
}
