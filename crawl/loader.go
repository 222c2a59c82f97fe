package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sitemapper"
)

// DefaultMaxText bounds FetchResult.Text.
const DefaultMaxText = 10000

// Compile-time interface verification.
var _ sitemapper.PageFetcher = (*Loader)(nil)

// Loader fetches a page and derives its text summary and metadata.
//
// Renderer, if set, is tried first. Fallback serves pages the renderer
// could not load, and every page when no renderer is configured. When
// Extractor and Converter are both set, the summary text is the markdown
// of the page's main content; otherwise it is the page's visible text.
type Loader struct {
	Renderer   sitemapper.Fetcher
	Fallback   sitemapper.Fetcher
	Extractor  sitemapper.Extractor
	Converter  sitemapper.Converter
	Summarizer sitemapper.Summarizer
	MaxText    int
}

// FetchPage retrieves url and summarizes it.
func (l *Loader) FetchPage(ctx context.Context, url string) (*sitemapper.FetchResult, error) {
	begin := time.Now()

	html, renderer, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("empty page: %s", url)
	}

	result := &sitemapper.FetchResult{
		URL:      url,
		HTML:     html,
		Renderer: renderer,
	}

	if l.Summarizer != nil {
		summary, err := l.Summarizer.Summarize(html)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", url, err)
		}
		result.Title = summary.Title
		result.Description = summary.Description
		result.Text = summary.Text
	}

	if l.Extractor != nil && l.Converter != nil {
		l.applyMainContent(result)
	}

	maxText := l.MaxText
	if maxText <= 0 {
		maxText = DefaultMaxText
	}
	result.Text = truncateRunes(result.Text, maxText)
	result.Elapsed = time.Since(begin)

	return result, nil
}

// fetch tries the renderer and then the fallback, reporting which served
// the page.
func (l *Loader) fetch(ctx context.Context, url string) (string, string, error) {
	var renderErr error
	if l.Renderer != nil {
		html, err := l.Renderer.Fetch(ctx, url)
		if err == nil && strings.TrimSpace(html) != "" {
			return html, sitemapper.RendererBrowser, nil
		}
		renderErr = err
		if renderErr == nil {
			renderErr = fmt.Errorf("empty render: %s", url)
		}
	}

	if l.Fallback == nil {
		if renderErr != nil {
			return "", "", renderErr
		}
		return "", "", sitemapper.Errorf(sitemapper.EINVALID, "no fetcher configured")
	}

	html, err := l.Fallback.Fetch(ctx, url)
	if err != nil {
		if renderErr != nil {
			return "", "", fmt.Errorf("render: %v; fallback: %w", renderErr, err)
		}
		return "", "", err
	}
	return html, sitemapper.RendererHTTP, nil
}

// applyMainContent replaces the summary text with markdown of the main
// content and fills missing metadata. Extraction failures keep the plain
// summary.
func (l *Loader) applyMainContent(result *sitemapper.FetchResult) {
	extracted, err := l.Extractor.Extract(result.HTML)
	if err != nil || extracted == nil {
		return
	}
	if result.Title == "" {
		result.Title = extracted.Title
	}
	if result.Description == "" {
		result.Description = truncateRunes(extracted.Description, 300)
	}
	if extracted.ContentHTML == "" {
		return
	}
	markdown, err := l.Converter.Convert(extracted.ContentHTML)
	if err != nil || strings.TrimSpace(markdown) == "" {
		return
	}
	result.Text = strings.TrimSpace(markdown)
}
