package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/crawl"
	"github.com/fwojciec/sitemapper/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	result, crawlErr := deps.Crawler.Crawl(deps.Ctx, c.URL, func(ev crawl.ProgressEvent) {
		fmt.Fprintln(deps.Stderr, ev.Message)
	})
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(crawlErr))
		return crawlErr
	}
	m := result.SiteMap

	// An interrupted crawl still saves and exports its partial map.
	ctx := context.WithoutCancel(deps.Ctx)
	if err := deps.SiteMaps.SaveSiteMap(ctx, m); err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to save run: %s\n", sitemapper.ErrorMessage(err))
		return err
	}

	printSiteMap(deps, m, result)

	if c.Output != "" {
		if err := fs.WriteSiteMap(c.Output, m); err != nil {
			fmt.Fprintf(deps.Stderr, "error: failed to write %s: %v\n", c.Output, err)
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote site map to %s\n", c.Output)
	}
	if c.SitemapXML != "" {
		if err := fs.WriteSitemapXML(c.SitemapXML, m); err != nil {
			fmt.Fprintf(deps.Stderr, "error: failed to write %s: %v\n", c.SitemapXML, err)
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote XML sitemap to %s\n", c.SitemapXML)
	}

	if crawlErr != nil {
		return crawlErr
	}

	if c.Discover {
		if deps.Discoverer == nil {
			return sitemapper.Errorf(sitemapper.EINTERNAL, "flow discovery not configured")
		}
		result, err := deps.Discoverer.Discover(ctx, m.Descriptors(), m.Pages(), c.Partial)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout)
		printFlows(deps.Stdout, result)
	}
	return nil
}

func printSiteMap(deps *Dependencies, m *sitemapper.SiteMap, result *crawl.Result) {
	fmt.Fprintf(deps.Stdout, "Run %s (%s): %d pages, %d elements in %.1fs\n",
		m.ID, m.State, m.PagesCrawled(), m.ElementsDiscovered(), result.Duration.Seconds())
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d pages could not be fetched\n", result.Failed)
	}
	for _, tc := range m.TypeCounts() {
		fmt.Fprintf(deps.Stdout, "  %-12s %d\n", tc.Type, tc.Count)
	}
}
