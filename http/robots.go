package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/fwojciec/sitemapper"
	"github.com/temoto/robotstxt"
)

// RobotsAgent is the user agent token matched against robots.txt groups.
// Sites without a group for it fall under "User-agent: *".
const RobotsAgent = "sitemapper"

// maxRobotsSize bounds how much of a robots.txt file is read.
const maxRobotsSize = 512 << 10

// Ensure RobotsPolicy implements sitemapper.RobotsChecker at compile time.
var _ sitemapper.RobotsChecker = (*RobotsPolicy)(nil)

// RobotsPolicy answers robots.txt questions for RobotsAgent. Rules are
// fetched once per scheme and host and cached. A missing robots.txt (4xx)
// allows everything; a server error (5xx) disallows everything. A request
// that fails outright allows the URL without caching, so the next link to
// that origin tries again.
type RobotsPolicy struct {
	client *http.Client

	mu     sync.Mutex
	rules  map[string]*robotstxt.RobotsData
}

// NewRobotsPolicy creates a RobotsPolicy using client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewRobotsPolicy(client *http.Client) *RobotsPolicy {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &RobotsPolicy{
		client: client,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be crawled. Path and query are both
// matched, so wildcard rules such as "Disallow: /*?sort=" apply.
func (p *RobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	origin := u.Scheme + "://" + u.Host
	p.mu.Lock()
	rules, ok := p.rules[origin]
	p.mu.Unlock()

	if !ok {
		rules, err = p.load(ctx, origin)
		if err != nil {
			return true
		}
		p.mu.Lock()
		p.rules[origin] = rules
		p.mu.Unlock()
	}

	return rules.TestAgent(u.RequestURI(), RobotsAgent)
}

// load fetches and parses the robots.txt of origin. Errors are transport
// failures only; HTTP statuses are interpreted by robotstxt.
func (p *RobotsPolicy) load(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil, err
	}

	rules, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		// Unparseable files and unexpected statuses do not block the crawl.
		return robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	}
	return rules, nil
}
