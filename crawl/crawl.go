// Package crawl provides the breadth-first site crawler. It coordinates
// fetching, element and link extraction, and the SiteMap of one run.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/publicsuffix"
)

// Crawl defaults.
const (
	DefaultMaxPages     = 30
	DefaultLinksPerPage = 5
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Crawler maps one site at a time. Exactly one page fetch is in flight:
// the loop fetches, extracts, and enqueues sequentially, so the SiteMap
// is never mutated concurrently.
type Crawler struct {
	Fetcher     sitemapper.PageFetcher
	Elements    sitemapper.ElementExtractor
	Links       sitemapper.LinkExtractor
	RateLimiter sitemapper.DomainLimiter
	Robots      sitemapper.RobotsChecker

	// MaxPages is the page budget. Defaults to DefaultMaxPages.
	MaxPages int
	// LinksPerPage caps the new links enqueued from one page.
	// Defaults to DefaultLinksPerPage.
	LinksPerPage int
	// PageTimeout bounds one page fetch. Zero leaves it to the fetcher.
	PageTimeout time.Duration
}

// Result holds the outcome of a crawl operation.
type Result struct {
	SiteMap  *sitemapper.SiteMap
	Failed   int
	Duration time.Duration
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type     ProgressType
	URL      string
	Pages    int
	Elements int
	Queued   int
	// Message is the timestamped line appended to the exploration log.
	Message string
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPage
	ProgressCompleted
	ProgressFailed
	ProgressStopped
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl maps the site at startURL.
//
// The run ends COMPLETED when the frontier empties or the page budget is
// reached, and STOPPED when ctx is canceled. Cancellation is observed only
// at the top of the loop and while waiting on the rate limiter; a fetch in
// progress always completes. A failed fetch is logged and skipped. An
// extraction error ends the run FAILED; the partial map is returned along
// with the error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, progress ProgressFunc) (*Result, error) {
	start := NormalizeURL(startURL)
	u, err := url.Parse(start)
	if err != nil || u.Host == "" {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid start URL: %q", startURL)
	}

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	linksPerPage := c.LinksPerPage
	if linksPerPage <= 0 {
		linksPerPage = DefaultLinksPerPage
	}

	domain := publicsuffix.Domain(u.Host)
	r := &run{
		m:        sitemapper.NewSiteMap(start, domain),
		begin:    time.Now(),
		progress: progress,
		frontier: NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
	}
	r.m.State = sitemapper.StateRunning
	r.m.StartedAt = r.begin.UTC()
	r.frontier.Push(start)

	r.log(ProgressEvent{Type: ProgressStarted, URL: start}, "Starting crawl of %s (max %d pages)", start, maxPages)

	var failed int
	for r.frontier.Len() > 0 && r.m.PagesCrawled() < maxPages {
		if ctx.Err() != nil {
			r.stop()
			break
		}

		next, _ := r.frontier.Pop()

		if c.RateLimiter != nil {
			if err := c.RateLimiter.Wait(ctx, domain); err != nil {
				r.stop()
				break
			}
		}

		if !r.m.AddPage(next) {
			continue
		}
		r.log(ProgressEvent{Type: ProgressPage, URL: next}, "[Page %d] %s", r.m.PagesCrawled(), TruncateURL(next, 60))

		page, err := c.fetch(ctx, next)
		if err != nil {
			failed++
			r.log(ProgressEvent{Type: ProgressFailed, URL: next, Error: err}, "Failed: %v", err)
			continue
		}

		if err := c.process(ctx, r, page, linksPerPage); err != nil {
			r.m.State = sitemapper.StateFailed
			r.log(ProgressEvent{Type: ProgressFailed, URL: next, Error: err}, "Crawl failed: %v", err)
			return r.finish(failed), err
		}
	}

	if r.m.State == sitemapper.StateRunning {
		r.m.State = sitemapper.StateCompleted
	}
	return r.finish(failed), nil
}

// fetch loads one page. The fetch is detached from ctx cancellation so a
// stop request never aborts a page midway.
func (c *Crawler) fetch(ctx context.Context, url string) (*sitemapper.FetchResult, error) {
	fetchCtx := context.WithoutCancel(ctx)
	if c.PageTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, c.PageTimeout)
		defer cancel()
	}

	page, err := c.Fetcher.FetchPage(fetchCtx, url)
	if err != nil {
		return nil, err
	}
	if page == nil || page.HTML == "" {
		return nil, fmt.Errorf("empty page: %s", url)
	}
	if page.URL == "" {
		page.URL = url
	}
	return page, nil
}

// process records the elements of one fetched page and enqueues up to
// linksPerPage links that were never queued before.
func (c *Crawler) process(ctx context.Context, r *run, page *sitemapper.FetchResult, linksPerPage int) error {
	elements, err := c.Elements.ExtractElements(page.HTML, page.URL)
	if err != nil {
		return fmt.Errorf("extract elements from %s: %w", page.URL, err)
	}
	added := 0
	for _, el := range elements {
		if r.m.AddElement(el) {
			added++
		}
	}

	links, err := c.Links.ExtractLinks(page.HTML, page.URL)
	if err != nil {
		return fmt.Errorf("extract links from %s: %w", page.URL, err)
	}
	// Robots lookups run to completion so a stop never caches a failed
	// robots.txt read for the rest of the run.
	robotsCtx := context.WithoutCancel(ctx)
	enqueued := 0
	for _, link := range links {
		if enqueued >= linksPerPage {
			break
		}
		if r.frontier.Seen(link) {
			continue
		}
		if c.Robots != nil && !c.Robots.Allowed(robotsCtx, link) {
			continue
		}
		if r.frontier.Push(link) {
			enqueued++
		}
	}

	r.log(ProgressEvent{Type: ProgressCompleted, URL: page.URL},
		"Fetched %s via %s in %.1fs: %d elements (%d new), %d links queued",
		FormatBytes(len(page.HTML)), page.Renderer, page.Elapsed.Seconds(), len(elements), added, enqueued)
	return nil
}

// run is the mutable state of one Crawl call.
type run struct {
	m        *sitemapper.SiteMap
	begin    time.Time
	progress ProgressFunc
	frontier *Frontier
}

// log appends a line stamped with the elapsed crawl time to the
// exploration log and forwards it to the progress callback.
func (r *run) log(ev ProgressEvent, format string, args ...any) {
	msg := fmt.Sprintf("[%.1fs] ", time.Since(r.begin).Seconds()) + fmt.Sprintf(format, args...)
	r.m.Log(msg)
	if r.progress == nil {
		return
	}
	ev.Message = msg
	ev.Pages = r.m.PagesCrawled()
	ev.Elements = r.m.ElementsDiscovered()
	ev.Queued = r.frontier.Len()
	r.progress(ev)
}

func (r *run) stop() {
	r.m.State = sitemapper.StateStopped
	r.log(ProgressEvent{Type: ProgressStopped}, "Stop requested")
}

func (r *run) finish(failed int) *Result {
	r.m.FinishedAt = time.Now().UTC()
	d := time.Since(r.begin)
	r.log(ProgressEvent{Type: ProgressFinished}, "Done: %d pages, %d elements (%.1fs)",
		r.m.PagesCrawled(), r.m.ElementsDiscovered(), d.Seconds())
	return &Result{
		SiteMap:  r.m,
		Failed:   failed,
		Duration: d,
	}
}
