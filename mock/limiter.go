package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of sitemapper.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ sitemapper.RobotsChecker = (*RobotsChecker)(nil)

// RobotsChecker is a mock implementation of sitemapper.RobotsChecker.
type RobotsChecker struct {
	AllowedFn func(ctx context.Context, url string) bool
}

func (r *RobotsChecker) Allowed(ctx context.Context, url string) bool {
	return r.AllowedFn(ctx, url)
}
