package sitemapper

import (
	"context"
	"time"
)

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Renderer names for FetchResult.Renderer.
const (
	RendererBrowser = "browser"
	RendererHTTP    = "http"
)

// FetchResult is one successfully fetched page.
type FetchResult struct {
	URL         string
	HTML        string
	Text        string // markdown or plain-text summary, bounded
	Title       string
	Description string
	Renderer    string
	Elapsed     time.Duration
}

// PageFetcher retrieves a page together with a text summary and metadata.
// Implementations hide rendering versus plain HTTP selection.
type PageFetcher interface {
	// FetchPage retrieves url. An error means the page is unreachable;
	// callers skip it rather than failing the crawl.
	FetchPage(ctx context.Context, url string) (*FetchResult, error)
}

// PageSummary is the metadata and visible text of an HTML document.
type PageSummary struct {
	Title       string
	Description string
	Text        string
}

// Summarizer derives metadata and visible text from HTML.
type Summarizer interface {
	// Summarize drops script and style content and returns the document
	// title, meta description, and whitespace-collapsed visible text.
	Summarize(html string) (*PageSummary, error)
}
