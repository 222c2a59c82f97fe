// Package inmem provides in-memory implementations of sitemapper services
// for tests and for runs that should not touch the pattern catalog on disk.
package inmem

import (
	"context"
	"sync"

	"github.com/fwojciec/sitemapper"
)

var _ sitemapper.PatternRepository = (*PatternStore)(nil)

// PatternStore holds a catalog in memory.
type PatternStore struct {
	mu      sync.Mutex
	catalog *sitemapper.Catalog
}

// NewPatternStore returns a store seeded with a copy of c. A nil c starts
// empty.
func NewPatternStore(c *sitemapper.Catalog) *PatternStore {
	return &PatternStore{catalog: c.Clone()}
}

// Catalog returns a copy of the stored catalog.
func (s *PatternStore) Catalog(_ context.Context) (*sitemapper.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Clone(), nil
}

// Save replaces the stored catalog with a copy of c.
func (s *PatternStore) Save(_ context.Context, c *sitemapper.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c.Clone()
	return nil
}

func (s *PatternStore) StagePattern(_ context.Context, p *sitemapper.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Stage(p)
}

func (s *PatternStore) ApprovePattern(_ context.Context, p *sitemapper.Pattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Approve(p)
}

func (s *PatternStore) RejectPattern(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Reject(id)
}
