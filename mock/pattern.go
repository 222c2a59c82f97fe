package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.PatternRepository = (*PatternRepository)(nil)

// PatternRepository is a mock implementation of sitemapper.PatternRepository.
type PatternRepository struct {
	CatalogFn        func(ctx context.Context) (*sitemapper.Catalog, error)
	StagePatternFn   func(ctx context.Context, p *sitemapper.Pattern) error
	ApprovePatternFn func(ctx context.Context, p *sitemapper.Pattern) error
	RejectPatternFn  func(ctx context.Context, id string) error
}

func (r *PatternRepository) Catalog(ctx context.Context) (*sitemapper.Catalog, error) {
	return r.CatalogFn(ctx)
}

func (r *PatternRepository) StagePattern(ctx context.Context, p *sitemapper.Pattern) error {
	return r.StagePatternFn(ctx, p)
}

func (r *PatternRepository) ApprovePattern(ctx context.Context, p *sitemapper.Pattern) error {
	return r.ApprovePatternFn(ctx, p)
}

func (r *PatternRepository) RejectPattern(ctx context.Context, id string) error {
	return r.RejectPatternFn(ctx, id)
}
