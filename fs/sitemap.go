package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitemapper"
)

// sitemapNamespace is the sitemaps.org schema of a urlset document.
const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// WriteSiteMap writes the JSON form of m to path atomically.
func WriteSiteMap(path string, m *sitemapper.SiteMap) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode site map: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// ReadSiteMap reads a site map previously written by WriteSiteMap.
func ReadSiteMap(path string) (*sitemapper.SiteMap, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, sitemapper.Errorf(sitemapper.ENOTFOUND, "site map file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}

	var m sitemapper.SiteMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid site map %s: %v", path, err)
	}
	return &m, nil
}

// WriteSitemapXML writes the crawled pages of m to path as a sitemaps.org
// urlset. Each entry carries the crawl date as lastmod.
func WriteSitemapXML(path string, m *sitemapper.SiteMap) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", sitemapNamespace)

	crawled := m.FinishedAt
	if crawled.IsZero() {
		crawled = m.StartedAt
	}
	for _, page := range m.Pages() {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(page)
		if !crawled.IsZero() {
			u.CreateElement("lastmod").SetText(crawled.UTC().Format("2006-01-02"))
		}
	}
	doc.Indent(2)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode sitemap xml: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}
