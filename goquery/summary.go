package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitemapper"
)

// MaxDescriptionLength caps the meta description kept by Summarize.
const MaxDescriptionLength = 300

// Compile-time interface verification.
var _ sitemapper.Summarizer = (*Summarizer)(nil)

// Summarizer extracts document metadata and visible text.
type Summarizer struct{}

// NewSummarizer creates a new Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns the title, meta description, and visible text of html.
func (s *Summarizer) Summarize(html string) (*sitemapper.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	if desc == "" {
		desc, _ = doc.Find(`meta[property="og:description"]`).First().Attr("content")
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	return &sitemapper.PageSummary{
		Title:       cleanText(doc.Find("title").First().Text()),
		Description: truncate(cleanText(desc), MaxDescriptionLength),
		Text:        cleanText(body.Text()),
	}, nil
}
