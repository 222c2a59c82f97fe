package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.SiteMapService = (*SiteMapService)(nil)

// SiteMapService is a mock implementation of sitemapper.SiteMapService.
type SiteMapService struct {
	SaveSiteMapFn     func(ctx context.Context, m *sitemapper.SiteMap) error
	FindSiteMapByIDFn func(ctx context.Context, id string) (*sitemapper.SiteMap, error)
	FindSiteMapsFn    func(ctx context.Context) ([]*sitemapper.SiteMapSummary, error)
}

func (s *SiteMapService) SaveSiteMap(ctx context.Context, m *sitemapper.SiteMap) error {
	return s.SaveSiteMapFn(ctx, m)
}

func (s *SiteMapService) FindSiteMapByID(ctx context.Context, id string) (*sitemapper.SiteMap, error) {
	return s.FindSiteMapByIDFn(ctx, id)
}

func (s *SiteMapService) FindSiteMaps(ctx context.Context) ([]*sitemapper.SiteMapSummary, error) {
	return s.FindSiteMapsFn(ctx)
}
