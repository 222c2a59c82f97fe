package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/bloom"
)

// Compile-time interface verification.
var _ sitemapper.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO URL queue that remembers every URL ever
// pushed. A Bloom filter answers most "never seen" lookups; an exact set
// resolves its false positives so no new URL is ever rejected.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	bloom *bloom.Filter
	seen  map[string]struct{}
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given Bloom filter false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		bloom: bloom.NewFilter(n, fpRate),
		seen:  make(map[string]struct{}),
	}
}

// Push appends a URL to the back of the queue.
// Returns false if the URL has already been seen.
// URLs differing only by fragment are considered duplicates.
func (f *Frontier) Push(rawURL string) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seenLocked(url) {
		return false
	}
	f.bloom.Add(url)
	f.seen[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop removes and returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued, whether or not it was
// popped since. URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenLocked(stripFragment(rawURL))
}

func (f *Frontier) seenLocked(url string) bool {
	if !f.bloom.Test(url) {
		return false
	}
	_, ok := f.seen[url]
	return ok
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
