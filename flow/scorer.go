// Package flow matches a crawled site against the pattern library and
// ranks the user flows it supports.
package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitemapper"
	"golang.org/x/sync/errgroup"
)

// Default classification thresholds.
const (
	DefaultHappyPathThreshold = 0.70
	DefaultPartialThreshold   = 0.30
)

// Caps applied to each discovered flow.
const (
	MaxFlowElements = 10
	MaxFlowPages    = 5
	MaxFlowSteps    = 5
)

const (
	// semanticSample is the number of leading descriptors embedded for the
	// site side of the semantic signal.
	semanticSample = 50
	// embedConcurrency bounds concurrent pattern embedding calls.
	embedConcurrency = 4
)

// Thresholds classify a confidence value into a flow type.
type Thresholds struct {
	HappyPath float64
	Partial   float64
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{HappyPath: DefaultHappyPathThreshold, Partial: DefaultPartialThreshold}
}

// Validate requires 0 <= Partial <= HappyPath <= 1.
func (t Thresholds) Validate() error {
	if t.Partial < 0 || t.HappyPath > 1 || t.Partial > t.HappyPath {
		return sitemapper.Errorf(sitemapper.EINVALID,
			"thresholds must satisfy 0 <= partial (%.2f) <= happy path (%.2f) <= 1", t.Partial, t.HappyPath)
	}
	return nil
}

// Weights combine the four signals into one confidence value.
type Weights struct {
	Element  float64
	URL      float64
	Semantic float64
	Context  float64
}

// Signal weights with and without an embedder. Without one, the semantic
// share is dropped and the element and URL signals are scaled up.
var (
	SemanticWeights = Weights{Element: 0.40, URL: 0.20, Semantic: 0.30, Context: 0.10}
	LexicalWeights  = Weights{Element: 0.55, URL: 0.35, Semantic: 0, Context: 0.10}
)

var _ sitemapper.FlowDiscoverer = (*Scorer)(nil)

// Scorer discovers flows. The catalog is loaded once at construction and
// reloaded after every administrative change; Discover only reads it.
type Scorer struct {
	repo       sitemapper.PatternRepository
	embedder   sitemapper.Embedder
	thresholds Thresholds

	mu         sync.RWMutex
	catalog    *sitemapper.Catalog
	active     []*sitemapper.Pattern
	semantic   bool
	embeddings map[uint64][]float32
	catalogErr error
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithEmbedder enables the semantic signal when e reports itself enabled.
func WithEmbedder(e sitemapper.Embedder) Option {
	return func(s *Scorer) {
		if e != nil {
			s.embedder = e
		}
	}
}

// WithThresholds overrides the classification thresholds.
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) {
		s.thresholds = t
	}
}

// NewScorer loads the catalog from repo and precomputes pattern embeddings.
//
// A catalog that cannot be loaded leaves the scorer with an empty library;
// CatalogErr reports the cause. If any pattern embedding fails the scorer
// falls back to lexical scoring.
func NewScorer(ctx context.Context, repo sitemapper.PatternRepository, opts ...Option) *Scorer {
	s := &Scorer{
		repo:       repo,
		embedder:   sitemapper.NopEmbedder{},
		thresholds: DefaultThresholds(),
		catalog:    &sitemapper.Catalog{},
		embeddings: make(map[uint64][]float32),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.reload(ctx); err != nil {
		s.catalogErr = err
	}

	s.semantic = s.embedder.Enabled()
	if s.semantic {
		if err := s.precompute(ctx, s.active); err != nil {
			s.semantic = false
		}
	}
	return s
}

// CatalogErr returns the error that prevented loading the catalog, if any.
func (s *Scorer) CatalogErr() error {
	return s.catalogErr
}

// SemanticEnabled reports whether the semantic signal participates.
func (s *Scorer) SemanticEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.semantic
}

// Patterns returns the active patterns in scoring order.
func (s *Scorer) Patterns() []*sitemapper.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*sitemapper.Pattern(nil), s.active...)
}

// Pending returns the candidates awaiting review.
func (s *Scorer) Pending() []*sitemapper.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*sitemapper.Pattern{}, s.catalog.Pending...)
}

// Discover scores every active pattern against the site.
//
// elements are descriptors of the form "<type>: <text> (<selector>)".
// Patterns at or above the happy path threshold are returned as happy
// paths; those at or above the partial threshold only when includePartial
// is set. Flows are ranked by confidence, ties in catalog order.
func (s *Scorer) Discover(ctx context.Context, elements, urls []string, includePartial bool) (*sitemapper.DiscoveryResult, error) {
	s.mu.RLock()
	active := s.active
	semantic := s.semantic
	pending := append([]*sitemapper.Pattern{}, s.catalog.Pending...)
	s.mu.RUnlock()

	lowerElements := lowerAll(elements)
	lowerURLs := lowerAll(urls)
	siteText := strings.Join(lowerElements, " ")

	weights := LexicalWeights
	var siteVector []float32
	if semantic {
		weights = SemanticWeights
		siteVector = s.embedSite(ctx, elements)
	}

	flows := []*sitemapper.UserFlow{}
	for _, p := range active {
		ev := sitemapper.Evidence{
			ElementScore:  elementScore(lowerElements, p.Elements),
			URLScore:      urlScore(lowerURLs, p.URLs),
			ContextBonus:  clamp(contextBonus(siteText, p.Elements)),
			PatternSource: p.Source,
		}
		confidence := weights.Element*ev.ElementScore + weights.URL*ev.URLScore + weights.Context*ev.ContextBonus
		if semantic {
			score := s.semanticScore(p, siteVector)
			confidence += weights.Semantic * score
			rounded := round2(score)
			ev.SemanticScore = &rounded
		}
		confidence = round2(confidence)

		typ, ok := s.classify(confidence, includePartial)
		if !ok {
			continue
		}

		ev.ElementScore = round2(ev.ElementScore)
		ev.URLScore = round2(ev.URLScore)
		ev.ContextBonus = round2(ev.ContextBonus)

		matched := matchElements(elements, lowerElements, p.Elements)
		pages := matchPages(urls, lowerURLs, p.URLs)
		name := p.DisplayName()

		flows = append(flows, &sitemapper.UserFlow{
			ID:         fmt.Sprintf("flow_%s_%d", p.ID, len(flows)),
			Name:       name,
			PatternID:  p.ID,
			Type:       typ,
			Steps:      buildSteps(name, matched),
			Elements:   head(matched, MaxFlowElements),
			Pages:      head(pages, MaxFlowPages),
			Confidence: confidence,
			Evidence:   ev,
		})
	}

	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].Confidence > flows[j].Confidence
	})

	stats := sitemapper.DiscoveryStats{
		PatternsChecked: len(active),
		PatternsMatched: len(flows),
		FlowsDiscovered: len(flows),
		SemanticEnabled: semantic,
	}
	if len(flows) > 0 {
		var sum float64
		for _, f := range flows {
			sum += f.Confidence
		}
		stats.AverageConfidence = round2(sum / float64(len(flows)))
	}

	return &sitemapper.DiscoveryResult{
		Flows:           flows,
		PendingPatterns: pending,
		Stats:           stats,
	}, nil
}

func (s *Scorer) classify(confidence float64, includePartial bool) (sitemapper.FlowType, bool) {
	switch {
	case confidence >= s.thresholds.HappyPath:
		return sitemapper.FlowHappyPath, true
	case confidence >= s.thresholds.Partial && includePartial:
		return sitemapper.FlowPartial, true
	}
	return "", false
}

// StagePattern adds a candidate to the pending set for review.
func (s *Scorer) StagePattern(ctx context.Context, p *sitemapper.Pattern) error {
	if p == nil {
		return sitemapper.Errorf(sitemapper.EINVALID, "pattern required")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	staged := *p
	staged.Approved = false
	if err := s.repo.StagePattern(ctx, &staged); err != nil {
		return err
	}
	return s.reload(ctx)
}

// ApprovePattern stores a learned pattern under id and activates it.
// A nil p promotes the pending candidate with that id, or a learned
// pattern awaiting approval; otherwise p is stored as given. The pattern embedding is refreshed when semantic
// scoring is on.
func (s *Scorer) ApprovePattern(ctx context.Context, id string, p *sitemapper.Pattern) error {
	var approved sitemapper.Pattern
	if p == nil {
		s.mu.RLock()
		staged := s.catalog.FindCandidate(id)
		s.mu.RUnlock()
		if staged == nil {
			return sitemapper.Errorf(sitemapper.ENOTFOUND, "no pending pattern %q", id)
		}
		approved = *staged
	} else {
		approved = *p
	}
	approved.ID = id
	approved.Approved = true
	if err := approved.Validate(); err != nil {
		return err
	}

	if err := s.repo.ApprovePattern(ctx, &approved); err != nil {
		return err
	}
	if err := s.reload(ctx); err != nil {
		return err
	}

	if s.SemanticEnabled() {
		// A failed refresh leaves the pattern without a semantic signal.
		_ = s.precompute(ctx, []*sitemapper.Pattern{&approved})
	}
	return nil
}

// RejectPattern discards the pending candidate with id.
func (s *Scorer) RejectPattern(ctx context.Context, id string) error {
	if err := s.repo.RejectPattern(ctx, id); err != nil {
		return err
	}
	return s.reload(ctx)
}

func (s *Scorer) reload(ctx context.Context) error {
	c, err := s.repo.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("load pattern catalog: %w", err)
	}
	if c == nil {
		c = &sitemapper.Catalog{}
	}
	active := c.Active()

	s.mu.Lock()
	s.catalog = c
	s.active = active
	s.mu.Unlock()
	return nil
}

// precompute embeds the text of every pattern with elements. Embeddings
// are cached by a hash of that text, so an edited pattern is re-embedded.
func (s *Scorer) precompute(ctx context.Context, patterns []*sitemapper.Pattern) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for _, p := range patterns {
		if len(p.Elements) == 0 {
			continue
		}
		text := patternText(p)
		key := xxhash.Sum64String(text)

		s.mu.RLock()
		_, cached := s.embeddings[key]
		s.mu.RUnlock()
		if cached {
			continue
		}

		id := p.ID
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed pattern %s: %w", id, err)
			}
			s.mu.Lock()
			s.embeddings[key] = vec
			s.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (s *Scorer) semanticScore(p *sitemapper.Pattern, site []float32) float64 {
	if site == nil || len(p.Elements) == 0 {
		return 0
	}
	s.mu.RLock()
	vec, ok := s.embeddings[xxhash.Sum64String(patternText(p))]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return cosine(site, vec)
}

// embedSite embeds the trailing text of the first descriptors. It returns
// nil when there is nothing to embed or the call fails.
func (s *Scorer) embedSite(ctx context.Context, elements []string) []float32 {
	parts := make([]string, 0, min(len(elements), semanticSample))
	for _, d := range head(elements, semanticSample) {
		parts = append(parts, descriptorText(d))
	}
	text := strings.Join(parts, " ")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vec
}

func patternText(p *sitemapper.Pattern) string {
	return p.Name + " " + p.Description + " " + strings.Join(p.Elements, " ")
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
