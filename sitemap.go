package sitemapper

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// RecentLogSize is the number of exploration log entries kept on serialization.
const RecentLogSize = 50

// CrawlState is the lifecycle state of one crawl run.
type CrawlState string

// Crawl states.
const (
	StateIdle      CrawlState = "idle"
	StateRunning   CrawlState = "running"
	StateCompleted CrawlState = "completed"
	StateStopped   CrawlState = "stopped"
	StateFailed    CrawlState = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s CrawlState) Terminal() bool {
	return s == StateCompleted || s == StateStopped || s == StateFailed
}

// SiteMap aggregates the pages and elements discovered by one crawl run.
//
// A SiteMap is append-only: pages and elements are never removed. It is
// not safe for concurrent mutation; the crawl controller is its only writer.
type SiteMap struct {
	ID         string
	URL        string
	Domain     string
	State      CrawlState
	StartedAt  time.Time
	FinishedAt time.Time

	pages      []string
	pageSet    map[string]struct{}
	elements   []Element
	elementSet map[ElementKey]struct{}
	log        []string
}

// NewSiteMap returns an empty site map for a crawl of url.
func NewSiteMap(url, domain string) *SiteMap {
	return &SiteMap{
		URL:        url,
		Domain:     domain,
		State:      StateIdle,
		pageSet:    make(map[string]struct{}),
		elementSet: make(map[ElementKey]struct{}),
	}
}

// AddPage records a visited page.
// Returns false if the page was already recorded.
func (m *SiteMap) AddPage(url string) bool {
	if m.pageSet == nil {
		m.pageSet = make(map[string]struct{})
	}
	if _, ok := m.pageSet[url]; ok {
		return false
	}
	m.pageSet[url] = struct{}{}
	m.pages = append(m.pages, url)
	return true
}

// AddElement records an element unless one with the same selector and page
// URL exists. Elements without an ID are assigned the next sequential ID.
// Returns false if the element was dropped as a duplicate.
func (m *SiteMap) AddElement(e Element) bool {
	if m.elementSet == nil {
		m.elementSet = make(map[ElementKey]struct{})
	}
	key := e.Key()
	if _, ok := m.elementSet[key]; ok {
		return false
	}
	if e.ID == "" {
		e.ID = ElementID(len(m.elements) + 1)
	}
	m.elementSet[key] = struct{}{}
	m.elements = append(m.elements, e)
	return true
}

// Log appends a message to the exploration log.
func (m *SiteMap) Log(message string) {
	m.log = append(m.log, message)
}

// Pages returns visited page URLs in visit order.
func (m *SiteMap) Pages() []string {
	return append([]string(nil), m.pages...)
}

// Elements returns discovered elements in insertion order.
func (m *SiteMap) Elements() []Element {
	return append([]Element(nil), m.elements...)
}

// PagesCrawled returns the number of visited pages.
func (m *SiteMap) PagesCrawled() int { return len(m.pages) }

// ElementsDiscovered returns the number of discovered elements.
func (m *SiteMap) ElementsDiscovered() int { return len(m.elements) }

// ExplorationLog returns every log entry.
func (m *SiteMap) ExplorationLog() []string {
	return append([]string(nil), m.log...)
}

// RecentLog returns the most recent RecentLogSize log entries.
func (m *SiteMap) RecentLog() []string {
	if len(m.log) <= RecentLogSize {
		return m.ExplorationLog()
	}
	return append([]string(nil), m.log[len(m.log)-RecentLogSize:]...)
}

// Descriptors flattens elements that have text into descriptor strings,
// in insertion order.
func (m *SiteMap) Descriptors() []string {
	descriptors := make([]string, 0, len(m.elements))
	for i := range m.elements {
		if m.elements[i].Text == "" {
			continue
		}
		descriptors = append(descriptors, m.elements[i].Descriptor())
	}
	return descriptors
}

// TypeCount is the number of elements of one type.
type TypeCount struct {
	Type  ElementType
	Count int
}

// TypeCounts returns element counts per type, most frequent first.
// Ties are ordered by type name.
func (m *SiteMap) TypeCounts() []TypeCount {
	counts := make(map[ElementType]int)
	for i := range m.elements {
		counts[m.elements[i].Type]++
	}
	result := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		result = append(result, TypeCount{Type: t, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// siteMapJSON is the serialized form of a SiteMap.
type siteMapJSON struct {
	ID                 string     `json:"id,omitempty"`
	URL                string     `json:"url"`
	Domain             string     `json:"domain"`
	State              CrawlState `json:"state"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         time.Time  `json:"finished_at"`
	PagesCrawled       int        `json:"pages_crawled"`
	ElementsDiscovered int        `json:"elements_discovered"`
	Pages              []string   `json:"pages"`
	Elements           []Element  `json:"elements"`
	ExplorationLog     []string   `json:"exploration_log"`
}

// MarshalJSON serializes the site map with only the recent log entries.
func (m *SiteMap) MarshalJSON() ([]byte, error) {
	pages := m.pages
	if pages == nil {
		pages = []string{}
	}
	elements := m.elements
	if elements == nil {
		elements = []Element{}
	}
	return json.Marshal(siteMapJSON{
		ID:                 m.ID,
		URL:                m.URL,
		Domain:             m.Domain,
		State:              m.State,
		StartedAt:          m.StartedAt,
		FinishedAt:         m.FinishedAt,
		PagesCrawled:       len(pages),
		ElementsDiscovered: len(elements),
		Pages:              pages,
		Elements:           elements,
		ExplorationLog:     m.RecentLog(),
	})
}

// UnmarshalJSON rebuilds a site map through AddPage and AddElement so the
// dedup invariants hold for any input. Stored counters are ignored.
func (m *SiteMap) UnmarshalJSON(data []byte) error {
	var v siteMapJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = *NewSiteMap(v.URL, v.Domain)
	m.ID = v.ID
	if v.State != "" {
		m.State = v.State
	}
	m.StartedAt = v.StartedAt
	m.FinishedAt = v.FinishedAt
	for _, p := range v.Pages {
		m.AddPage(p)
	}
	for _, e := range v.Elements {
		m.AddElement(e)
	}
	m.log = append(m.log, v.ExplorationLog...)
	return nil
}

// ElementID formats the n-th element ID of a crawl run (1-based).
func ElementID(n int) string {
	return fmt.Sprintf("el_%04d", n)
}

// SiteMapSummary describes a stored crawl run without its contents.
type SiteMapSummary struct {
	ID                 string
	URL                string
	Domain             string
	State              CrawlState
	PagesCrawled       int
	ElementsDiscovered int
	StartedAt          time.Time
}

// SiteMapService persists crawl runs.
type SiteMapService interface {
	// SaveSiteMap stores a site map and assigns its ID.
	SaveSiteMap(ctx context.Context, m *SiteMap) error

	// FindSiteMapByID retrieves a stored site map.
	// Returns ENOTFOUND if the run does not exist.
	FindSiteMapByID(ctx context.Context, id string) (*SiteMap, error)

	// FindSiteMaps lists stored runs, newest first.
	FindSiteMaps(ctx context.Context) ([]*SiteMapSummary, error)
}
