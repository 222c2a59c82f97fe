// Package gemini implements sitemapper.Embedder using Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/sitemapper"
	"google.golang.org/genai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

var _ sitemapper.Embedder = (*Embedder)(nil)

// Embedder implements sitemapper.Embedder using the Gemini embeddings API.
type Embedder struct {
	client *genai.Client
	model  string
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		if model != "" {
			e.model = model
		}
	}
}

// NewEmbedder creates a new Embedder. A nil client yields a disabled
// embedder.
func NewEmbedder(client *genai.Client, opts ...Option) *Embedder {
	e := &Embedder{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewClient creates a Gemini API client for apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// Enabled reports whether a client is configured.
func (e *Embedder) Enabled() bool {
	return e.client != nil
}

// Embed returns the semantic-similarity embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "text required")
	}
	if e.client == nil {
		return nil, sitemapper.Errorf(sitemapper.ENOTIMPLEMENTED, "gemini client not configured")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, "user")},
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"},
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, sitemapper.Errorf(sitemapper.EINTERNAL, "gemini returned no embedding")
	}
	return result.Embeddings[0].Values, nil
}
