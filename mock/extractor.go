package mock

import "github.com/fwojciec/sitemapper"

var _ sitemapper.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of sitemapper.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*sitemapper.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*sitemapper.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ sitemapper.ElementExtractor = (*ElementExtractor)(nil)

// ElementExtractor is a mock implementation of sitemapper.ElementExtractor.
type ElementExtractor struct {
	ExtractElementsFn func(html, pageURL string) ([]sitemapper.Element, error)
}

func (e *ElementExtractor) ExtractElements(html, pageURL string) ([]sitemapper.Element, error) {
	return e.ExtractElementsFn(html, pageURL)
}

var _ sitemapper.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitemapper.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}
