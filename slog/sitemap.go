package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitemapper"
)

// Ensure LoggingSiteMapService implements sitemapper.SiteMapService.
var _ sitemapper.SiteMapService = (*LoggingSiteMapService)(nil)

// LoggingSiteMapService wraps a SiteMapService with debug logging.
type LoggingSiteMapService struct {
	next   sitemapper.SiteMapService
	logger *slog.Logger
}

// NewLoggingSiteMapService creates a new LoggingSiteMapService.
func NewLoggingSiteMapService(next sitemapper.SiteMapService, logger *slog.Logger) *LoggingSiteMapService {
	return &LoggingSiteMapService{next: next, logger: logger}
}

// SaveSiteMap delegates to the wrapped service and logs the operation.
func (s *LoggingSiteMapService) SaveSiteMap(ctx context.Context, m *sitemapper.SiteMap) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save site map",
			"id", m.ID,
			"url", m.URL,
			"state", m.State,
			"pages", m.PagesCrawled(),
			"elements", m.ElementsDiscovered(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveSiteMap(ctx, m)
}

func (s *LoggingSiteMapService) FindSiteMapByID(ctx context.Context, id string) (m *sitemapper.SiteMap, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find site map",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSiteMapByID(ctx, id)
}

func (s *LoggingSiteMapService) FindSiteMaps(ctx context.Context) (runs []*sitemapper.SiteMapSummary, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find site maps",
			"count", len(runs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSiteMaps(ctx)
}
