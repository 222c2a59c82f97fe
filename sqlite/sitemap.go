package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fwojciec/sitemapper"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitemapper.SiteMapService = (*SiteMapService)(nil)

// SiteMapService implements sitemapper.SiteMapService using SQLite.
type SiteMapService struct {
	db *DB
}

// NewSiteMapService creates a new SiteMapService.
func NewSiteMapService(db *DB) *SiteMapService {
	return &SiteMapService{db: db}
}

// SaveSiteMap stores m, assigning a new ID when m has none. Saving a run
// that already exists replaces its contents. Only the recent exploration
// log is kept.
func (s *SiteMapService) SaveSiteMap(ctx context.Context, m *sitemapper.SiteMap) error {
	if m.URL == "" {
		return sitemapper.Errorf(sitemapper.EINVALID, "site map URL required")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	logJSON, err := encodeJSON(m.RecentLog())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", m.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, url, domain, state, pages_crawled, elements_discovered, exploration_log, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.URL, m.Domain, string(m.State), m.PagesCrawled(), m.ElementsDiscovered(), logJSON,
		formatRFC3339(m.StartedAt), formatRFC3339(m.FinishedAt))
	if err != nil {
		return err
	}

	for i, page := range m.Pages() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO pages (run_id, position, url) VALUES (?, ?, ?)", m.ID, i, page); err != nil {
			return err
		}
	}

	for i, e := range m.Elements() {
		attrs, err := encodeJSON(e.Attributes)
		if err != nil {
			return err
		}
		options, err := encodeJSON(e.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO elements (run_id, position, element_id, type, text, selector, page_url,
				attributes, input_type, placeholder, options, is_visible, is_enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, i, e.ID, string(e.Type), e.Text, e.Selector, e.PageURL,
			attrs, e.InputType, e.Placeholder, options, e.Visible, e.Enabled)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindSiteMapByID retrieves a stored run with its pages and elements.
func (s *SiteMapService) FindSiteMapByID(ctx context.Context, id string) (*sitemapper.SiteMap, error) {
	var (
		url, domain, state, logJSON string
		startedAt, finishedAt       string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT url, domain, state, exploration_log, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&url, &domain, &state, &logJSON, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sitemapper.Errorf(sitemapper.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	m := sitemapper.NewSiteMap(url, domain)
	m.ID = id
	m.State = sitemapper.CrawlState(state)
	if m.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if m.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}

	var log []string
	if err := decodeJSON(logJSON, "exploration_log", &log); err != nil {
		return nil, err
	}
	for _, line := range log {
		m.Log(line)
	}

	if err := s.loadPages(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadElements(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SiteMapService) loadPages(ctx context.Context, m *sitemapper.SiteMap) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT url FROM pages WHERE run_id = ? ORDER BY position", m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return err
		}
		m.AddPage(url)
	}
	return rows.Err()
}

func (s *SiteMapService) loadElements(ctx context.Context, m *sitemapper.SiteMap) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT element_id, type, text, selector, page_url, attributes, input_type, placeholder,
			options, is_visible, is_enabled
		FROM elements
		WHERE run_id = ?
		ORDER BY position
	`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e              sitemapper.Element
			typ            string
			attrs, options string
		)
		if err := rows.Scan(&e.ID, &typ, &e.Text, &e.Selector, &e.PageURL, &attrs, &e.InputType,
			&e.Placeholder, &options, &e.Visible, &e.Enabled); err != nil {
			return err
		}
		e.Type = sitemapper.ParseElementType(typ)
		if err := decodeJSON(attrs, "attributes", &e.Attributes); err != nil {
			return err
		}
		if err := decodeJSON(options, "options", &e.Options); err != nil {
			return err
		}
		m.AddElement(e)
	}
	return rows.Err()
}

// FindSiteMaps lists stored runs, newest first.
func (s *SiteMapService) FindSiteMaps(ctx context.Context) ([]*sitemapper.SiteMapSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, domain, state, pages_crawled, elements_discovered, started_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*sitemapper.SiteMapSummary
	for rows.Next() {
		var (
			r         sitemapper.SiteMapSummary
			state     string
			startedAt string
		)
		if err := rows.Scan(&r.ID, &r.URL, &r.Domain, &state, &r.PagesCrawled, &r.ElementsDiscovered, &startedAt); err != nil {
			return nil, err
		}
		r.State = sitemapper.CrawlState(state)
		if r.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
