package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.FlowDiscoverer = (*FlowDiscoverer)(nil)

// FlowDiscoverer is a mock implementation of sitemapper.FlowDiscoverer.
type FlowDiscoverer struct {
	DiscoverFn func(ctx context.Context, elements, urls []string, includePartial bool) (*sitemapper.DiscoveryResult, error)
}

func (d *FlowDiscoverer) Discover(ctx context.Context, elements, urls []string, includePartial bool) (*sitemapper.DiscoveryResult, error) {
	return d.DiscoverFn(ctx, elements, urls, includePartial)
}
