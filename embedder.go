package sitemapper

import "context"

// Embedder turns text into a dense vector for semantic similarity.
type Embedder interface {
	// Enabled reports whether the embedder can produce vectors.
	// Scorers use it to choose between weight sets.
	Enabled() bool

	// Embed returns the embedding of text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

var _ Embedder = NopEmbedder{}

// NopEmbedder is the Embedder used when no embedding backend is configured.
type NopEmbedder struct{}

// Enabled always returns false.
func (NopEmbedder) Enabled() bool { return false }

// Embed always fails with ENOTIMPLEMENTED.
func (NopEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, Errorf(ENOTIMPLEMENTED, "semantic embeddings unavailable")
}
