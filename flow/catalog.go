package flow

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sitemapper"
)

//go:embed default_patterns.json
var defaultPatterns []byte

// DefaultCatalog returns the starter library of core patterns.
func DefaultCatalog() *sitemapper.Catalog {
	var core []*sitemapper.Pattern
	if err := json.Unmarshal(defaultPatterns, &core); err != nil {
		panic(fmt.Sprintf("flow: invalid default patterns: %v", err))
	}
	return &sitemapper.Catalog{Core: core}
}
