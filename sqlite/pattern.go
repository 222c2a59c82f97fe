package sqlite

import (
	"context"
	"database/sql"

	"github.com/fwojciec/sitemapper"
)

// Catalog sections as stored in the patterns table.
const (
	sectionCore    = "core"
	sectionLearned = "learned"
	sectionPending = "pending"
)

// Compile-time interface verification.
var _ sitemapper.PatternRepository = (*PatternStore)(nil)

// PatternStore implements sitemapper.PatternRepository using SQLite.
// Every change runs in one transaction that rewrites the catalog.
type PatternStore struct {
	db *DB
}

// NewPatternStore creates a new PatternStore.
func NewPatternStore(db *DB) *PatternStore {
	return &PatternStore{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Catalog returns the stored catalog in insertion order.
func (s *PatternStore) Catalog(ctx context.Context) (*sitemapper.Catalog, error) {
	return loadCatalog(ctx, s.db)
}

// Save replaces the stored catalog with c.
func (s *PatternStore) Save(ctx context.Context, c *sitemapper.Catalog) error {
	return s.update(ctx, func(stored *sitemapper.Catalog) error {
		*stored = *c.Clone()
		return nil
	})
}

func (s *PatternStore) StagePattern(ctx context.Context, p *sitemapper.Pattern) error {
	return s.update(ctx, func(c *sitemapper.Catalog) error { return c.Stage(p) })
}

func (s *PatternStore) ApprovePattern(ctx context.Context, p *sitemapper.Pattern) error {
	return s.update(ctx, func(c *sitemapper.Catalog) error { return c.Approve(p) })
}

func (s *PatternStore) RejectPattern(ctx context.Context, id string) error {
	return s.update(ctx, func(c *sitemapper.Catalog) error { return c.Reject(id) })
}

func (s *PatternStore) update(ctx context.Context, fn func(*sitemapper.Catalog) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(tx)

	c, err := loadCatalog(ctx, tx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM patterns"); err != nil {
		return err
	}
	for _, sec := range []struct {
		name     string
		patterns []*sitemapper.Pattern
	}{
		{sectionCore, c.Core},
		{sectionLearned, c.Learned},
		{sectionPending, c.Pending},
	} {
		for i, p := range sec.patterns {
			if err := insertPattern(ctx, tx, sec.name, i, p); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func insertPattern(ctx context.Context, tx *sql.Tx, section string, position int, p *sitemapper.Pattern) error {
	elements, err := encodeJSON(nonNil(p.Elements))
	if err != nil {
		return err
	}
	urls, err := encodeJSON(nonNil(p.URLs))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO patterns (section, position, id, name, description, elements, urls, approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, section, position, p.ID, p.Name, p.Description, elements, urls, p.Approved)
	return err
}

func loadCatalog(ctx context.Context, q querier) (*sitemapper.Catalog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT section, id, name, description, elements, urls, approved
		FROM patterns
		ORDER BY section, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := &sitemapper.Catalog{}
	for rows.Next() {
		var (
			p              sitemapper.Pattern
			section        string
			elements, urls string
		)
		if err := rows.Scan(&section, &p.ID, &p.Name, &p.Description, &elements, &urls, &p.Approved); err != nil {
			return nil, err
		}
		if err := decodeJSON(elements, "elements", &p.Elements); err != nil {
			return nil, err
		}
		if err := decodeJSON(urls, "urls", &p.URLs); err != nil {
			return nil, err
		}
		switch section {
		case sectionCore:
			c.Core = append(c.Core, &p)
		case sectionLearned:
			c.Learned = append(c.Learned, &p)
		case sectionPending:
			c.Pending = append(c.Pending, &p)
		}
	}
	return c, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
