package goquery

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/publicsuffix"
)

// DefaultMaxLinks is the default cap on links returned per page.
const DefaultMaxLinks = 100

// assetExtensions are file types that never lead to an HTML page.
var assetExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".ico": true, ".bmp": true, ".avif": true,
	".css": true, ".js": true, ".mjs": true, ".map": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".csv": true,
	".zip": true, ".tar": true, ".gz": true, ".tgz": true, ".rar": true, ".7z": true,
	".mp3": true, ".mp4": true, ".webm": true, ".woff": true, ".woff2": true, ".ttf": true,
}

// Compile-time interface verification.
var _ sitemapper.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor collects same-site page links from anchors.
type LinkExtractor struct {
	maxLinks int
}

// LinkOption configures a LinkExtractor.
type LinkOption func(*LinkExtractor)

// WithMaxLinks sets the maximum number of links returned per page.
func WithMaxLinks(n int) LinkOption {
	return func(x *LinkExtractor) {
		x.maxLinks = n
	}
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor(opts ...LinkOption) *LinkExtractor {
	x := &LinkExtractor{maxLinks: DefaultMaxLinks}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExtractLinks resolves every navigable anchor against baseURL, drops
// fragment and query, and keeps URLs on the same registrable domain that
// do not point at static assets.
func (x *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "failed to parse HTML: %v", err)
	}

	baseDomain := publicsuffix.Domain(base.Host)
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href := sel.AttrOr("href", "")
		if !navigableHref(href) {
			return true
		}
		link := normalizeLink(base, href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true

		u, err := url.Parse(link)
		if err != nil || publicsuffix.Domain(u.Host) != baseDomain {
			return true
		}
		if assetExtensions[strings.ToLower(path.Ext(u.Path))] {
			return true
		}

		links = append(links, link)
		return x.maxLinks <= 0 || len(links) < x.maxLinks
	})

	return links, nil
}

// normalizeLink resolves href against base and strips the fragment,
// query, and trailing slash. Returns "" for unparseable or non-HTTP links.
func normalizeLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	u.ForceQuery = false
	return strings.TrimRight(u.String(), "/")
}
