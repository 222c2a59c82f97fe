// Package rod implements a rendering sitemapper.Fetcher on top of
// Chrome browser automation.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitemapper"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page render.
const DefaultFetchTimeout = 30 * time.Second

// Default viewport size of rendered pages.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 900
)

// Ensure Fetcher implements sitemapper.Fetcher at compile time.
var _ sitemapper.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome.
// Each fetch opens a fresh tab, waits for DOMContentLoaded, and returns
// the serialized document.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager  *BrowserManager
	timeout  time.Duration
	width    int
	height   int
	managed  []ManagerOption
	isClosed atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the maximum duration of one fetch.
// Defaults to DefaultFetchTimeout (30s).
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithViewport sets the browser viewport used for rendering.
func WithViewport(width, height int) Option {
	return func(f *Fetcher) {
		f.width = width
		f.height = height
	}
}

// WithManagerOptions passes options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managed = append(f.managed, opts...)
	}
}

// NewFetcher launches Chrome and returns a Fetcher using it.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		width:   DefaultViewportWidth,
		height:  DefaultViewportHeight,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managed...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.isClosed.Load() {
		return "", sitemapper.Errorf(sitemapper.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser := f.manager.Browser()
	if browser == nil {
		return "", sitemapper.Errorf(sitemapper.EINVALID, "browser is closed")
	}
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer f.manager.PageDone()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  f.width,
		Height: f.height,
	}); err != nil {
		return "", err
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
