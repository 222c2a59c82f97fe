package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.PatternRepository = (*LoggingPatternRepository)(nil)

// LoggingPatternRepository wraps a PatternRepository with debug logging.
// Catalog reads are not logged.
type LoggingPatternRepository struct {
	next   sitemapper.PatternRepository
	logger *slog.Logger
}

// NewLoggingPatternRepository creates a new LoggingPatternRepository.
func NewLoggingPatternRepository(next sitemapper.PatternRepository, logger *slog.Logger) *LoggingPatternRepository {
	return &LoggingPatternRepository{next: next, logger: logger}
}

func (r *LoggingPatternRepository) Catalog(ctx context.Context) (*sitemapper.Catalog, error) {
	return r.next.Catalog(ctx)
}

func (r *LoggingPatternRepository) StagePattern(ctx context.Context, p *sitemapper.Pattern) (err error) {
	defer r.log("stage pattern", p.ID, time.Now(), &err)
	return r.next.StagePattern(ctx, p)
}

func (r *LoggingPatternRepository) ApprovePattern(ctx context.Context, p *sitemapper.Pattern) (err error) {
	defer r.log("approve pattern", p.ID, time.Now(), &err)
	return r.next.ApprovePattern(ctx, p)
}

func (r *LoggingPatternRepository) RejectPattern(ctx context.Context, id string) (err error) {
	defer r.log("reject pattern", id, time.Now(), &err)
	return r.next.RejectPattern(ctx, id)
}

func (r *LoggingPatternRepository) log(msg, id string, begin time.Time, err *error) {
	r.logger.Info(msg,
		"id", id,
		"duration", time.Since(begin),
		"err", *err,
	)
}
