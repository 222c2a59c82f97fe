package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of sitemapper.Embedder.
type Embedder struct {
	EnabledFn func() bool
	EmbedFn   func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Enabled() bool {
	return e.EnabledFn()
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}
