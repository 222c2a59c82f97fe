// Package trafilatura extracts the main content of a page with
// go-trafilatura, dropping navigation, footers, and comment sections.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/sitemapper"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ sitemapper.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Comment sections (product reviews
// on most shops) are excluded; tables are kept for size charts and product details.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the title, description, and main content of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*sitemapper.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	out := &sitemapper.ExtractResult{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
	}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		out.ContentHTML = buf.String()
	}
	return out, nil
}
