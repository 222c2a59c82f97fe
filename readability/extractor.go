// Package readability extracts the main content of a page with
// go-readability. It serves as the lighter alternative to trafilatura.
package readability

import (
	"strings"

	"github.com/fwojciec/sitemapper"
	"github.com/go-shiori/go-readability"
)

var _ sitemapper.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title, excerpt, and content of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*sitemapper.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &sitemapper.ExtractResult{
		Title:       article.Title,
		Description: article.Excerpt,
		ContentHTML: article.Content,
	}, nil
}
