package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.FlowDiscoverer = (*LoggingDiscoverer)(nil)

// LoggingDiscoverer wraps a FlowDiscoverer with debug logging.
type LoggingDiscoverer struct {
	next   sitemapper.FlowDiscoverer
	logger *slog.Logger
}

// NewLoggingDiscoverer creates a new LoggingDiscoverer.
func NewLoggingDiscoverer(next sitemapper.FlowDiscoverer, logger *slog.Logger) *LoggingDiscoverer {
	return &LoggingDiscoverer{next: next, logger: logger}
}

// Discover delegates to the wrapped discoverer and logs the run statistics.
func (d *LoggingDiscoverer) Discover(ctx context.Context, elements, urls []string, includePartial bool) (result *sitemapper.DiscoveryResult, err error) {
	defer func(begin time.Time) {
		var stats sitemapper.DiscoveryStats
		if result != nil {
			stats = result.Stats
		}
		d.logger.Info("flow discovery",
			"elements", len(elements),
			"urls", len(urls),
			"partial", includePartial,
			"patterns", stats.PatternsChecked,
			"flows", stats.FlowsDiscovered,
			"avg_confidence", stats.AverageConfidence,
			"semantic", stats.SemanticEnabled,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Discover(ctx, elements, urls, includePartial)
}
