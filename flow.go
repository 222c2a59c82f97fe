package sitemapper

import "context"

// FlowType classifies a discovered flow by the strength of its evidence.
type FlowType string

// Flow types.
const (
	FlowHappyPath FlowType = "happy_path"
	FlowPartial   FlowType = "partial_flow"
)

// FlowStep is one synthesized action in a flow.
type FlowStep struct {
	Action      string `json:"action"`
	Element     string `json:"element"`
	Description string `json:"description"`
	Safe        bool   `json:"safe"`
}

// Evidence breaks a flow's confidence down by signal.
type Evidence struct {
	ElementScore  float64       `json:"element_score"`
	URLScore      float64       `json:"url_score"`
	SemanticScore *float64      `json:"semantic_score"` // nil when semantic scoring is off
	ContextBonus  float64       `json:"context_bonus"`
	PatternSource PatternSource `json:"pattern_source"`
}

// UserFlow is one scored match between a pattern and a crawled site.
type UserFlow struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PatternID  string     `json:"pattern_id"`
	Type       FlowType   `json:"flow_type"`
	Steps      []FlowStep `json:"steps"`
	Elements   []string   `json:"elements"`
	Pages      []string   `json:"pages"`
	Confidence float64    `json:"confidence"`
	Evidence   Evidence   `json:"evidence"`
}

// DiscoveryStats summarizes one discovery run.
type DiscoveryStats struct {
	PatternsChecked   int     `json:"patterns_checked"`
	PatternsMatched   int     `json:"patterns_matched"`
	FlowsDiscovered   int     `json:"flows_discovered"`
	AverageConfidence float64 `json:"average_confidence"`
	SemanticEnabled   bool    `json:"semantic_enabled"`
}

// DiscoveryResult is the ranked output of flow discovery.
type DiscoveryResult struct {
	Flows           []*UserFlow    `json:"flows"`
	PendingPatterns []*Pattern     `json:"new_patterns_pending"`
	Stats           DiscoveryStats `json:"stats"`
}

// FlowDiscoverer matches a crawled site against the pattern library.
type FlowDiscoverer interface {
	// Discover scores every active pattern against element descriptors of
	// the form "<type>: <text> (<selector>)" and visited URLs.
	// It never mutates the catalog.
	Discover(ctx context.Context, elements, urls []string, includePartial bool) (*DiscoveryResult, error)
}
