package mock

import (
	"context"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitemapper.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ sitemapper.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of sitemapper.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*sitemapper.FetchResult, error)
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*sitemapper.FetchResult, error) {
	return f.FetchPageFn(ctx, url)
}

var _ sitemapper.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of sitemapper.Summarizer.
type Summarizer struct {
	SummarizeFn func(html string) (*sitemapper.PageSummary, error)
}

func (s *Summarizer) Summarize(html string) (*sitemapper.PageSummary, error) {
	return s.SummarizeFn(html)
}
