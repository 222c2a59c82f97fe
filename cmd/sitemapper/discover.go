package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/fs"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	m, err := c.load(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}

	result, err := deps.Discoverer.Discover(deps.Ctx, m.Descriptors(), m.Pages(), c.Partial)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}

	if c.JSON {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, string(b))
		return nil
	}
	printFlows(deps.Stdout, result)
	return nil
}

// load reads Source as a site map file when it names an existing .json
// file and as a run ID otherwise.
func (c *DiscoverCmd) load(deps *Dependencies) (*sitemapper.SiteMap, error) {
	if strings.HasSuffix(c.Source, ".json") {
		if _, err := os.Stat(c.Source); err == nil {
			return fs.ReadSiteMap(c.Source)
		}
	}
	m, err := deps.SiteMaps.FindSiteMapByID(deps.Ctx, c.Source)
	if sitemapper.ErrorCode(err) == sitemapper.ENOTFOUND {
		return nil, sitemapper.Errorf(sitemapper.ENOTFOUND, "run %q not found. Use 'sitemapper runs' to see saved runs.", c.Source)
	}
	return m, err
}

func printFlows(w io.Writer, result *sitemapper.DiscoveryResult) {
	semantic := "off"
	if result.Stats.SemanticEnabled {
		semantic = "on"
	}
	fmt.Fprintf(w, "Discovered %d flows (%d patterns checked, semantic scoring %s)\n",
		result.Stats.FlowsDiscovered, result.Stats.PatternsChecked, semantic)

	for _, f := range result.Flows {
		fmt.Fprintf(w, "\n%s  %s  [%s]  %.2f\n", f.ID, f.Name, f.Type, f.Confidence)
		ev := f.Evidence
		fmt.Fprintf(w, "  evidence: elements %.2f, urls %.2f, context %.2f", ev.ElementScore, ev.URLScore, ev.ContextBonus)
		if ev.SemanticScore != nil {
			fmt.Fprintf(w, ", semantic %.2f", *ev.SemanticScore)
		}
		fmt.Fprintf(w, " (%s)\n", ev.PatternSource)
		for i, step := range f.Steps {
			marker := ""
			if !step.Safe {
				marker = "  (unsafe)"
			}
			fmt.Fprintf(w, "  %d. %s%s\n", i+1, step.Description, marker)
		}
		for _, page := range f.Pages {
			fmt.Fprintf(w, "  page: %s\n", page)
		}
	}

	if n := len(result.PendingPatterns); n > 0 {
		fmt.Fprintf(w, "\n%d patterns awaiting review. Use 'sitemapper patterns pending' to see them.\n", n)
	}
}
