package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the default per-site request rate.
const DefaultRequestsPerSecond = 5

var _ sitemapper.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces requests to each site with a token bucket. Hosts
// are keyed by registrable domain, so "shop.example.com" and
// "www.example.com" share one budget.
type DomainLimiter struct {
	mu    sync.Mutex
	sites map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst lets n requests through back to back before spacing applies.
// Defaults to 1.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n > 0 {
			d.burst = n
		}
	}
}

// NewDomainLimiter returns a limiter allowing rps requests per second to
// each site. A non-positive rps uses DefaultRequestsPerSecond.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	d := &DomainLimiter{
		sites: make(map[string]*rate.Limiter),
		limit: rate.Limit(rps),
		burst: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a request to host may proceed, or ctx ends.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.limiter(publicsuffix.Domain(host)).Wait(ctx)
}

func (d *DomainLimiter) limiter(site string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.sites[site]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.sites[site] = l
	}
	return l
}
