// Package openai implements sitemapper.Embedder using the OpenAI
// embeddings API.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sitemapper"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = openai.SmallEmbedding3

var _ sitemapper.Embedder = (*Embedder)(nil)

// Embedder implements sitemapper.Embedder.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		if model != "" {
			e.model = openai.EmbeddingModel(model)
		}
	}
}

// NewEmbedder creates an Embedder backed by client. A nil client yields a
// disabled embedder.
func NewEmbedder(client *openai.Client, opts ...Option) *Embedder {
	e := &Embedder{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewClient creates an OpenAI client. An empty baseURL keeps the default
// endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Enabled reports whether a client is configured.
func (e *Embedder) Enabled() bool {
	return e.client != nil
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "text required")
	}
	if e.client == nil {
		return nil, sitemapper.Errorf(sitemapper.ENOTIMPLEMENTED, "openai client not configured")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, sitemapper.Errorf(sitemapper.EINTERNAL, "openai returned no embedding")
	}
	return resp.Data[0].Embedding, nil
}
