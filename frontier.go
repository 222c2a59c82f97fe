package sitemapper

import "context"

// URLFrontier is the FIFO queue of URLs awaiting a visit.
type URLFrontier interface {
	// Push appends a URL to the back of the queue.
	// Returns false if the URL has already been queued.
	Push(url string) bool

	// Pop removes and returns the URL at the front of the queue.
	// Returns false if the frontier is empty.
	Pop() (string, bool)

	// Len returns the number of URLs in the queue.
	Len() int

	// Seen returns true if the URL has ever been queued.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// RobotsChecker reports whether a site's robots rules permit crawling a URL.
type RobotsChecker interface {
	Allowed(ctx context.Context, url string) bool
}
