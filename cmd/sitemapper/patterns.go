package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/flow"
	"gopkg.in/yaml.v3"
)

// Run executes the patterns list command.
func (c *PatternsListCmd) Run(deps *Dependencies) error {
	patterns := deps.Library.Patterns()
	if len(patterns) == 0 {
		fmt.Fprintln(deps.Stdout, "No patterns found. Use 'sitemapper patterns init' to add the built-in patterns.")
		return nil
	}
	printPatterns(deps.Stdout, patterns, true)
	return nil
}

// Run executes the patterns pending command.
func (c *PatternsPendingCmd) Run(deps *Dependencies) error {
	pending := deps.Library.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(deps.Stdout, "No patterns awaiting review.")
		return nil
	}
	printPatterns(deps.Stdout, pending, false)
	return nil
}

// Run executes the patterns stage command.
func (c *PatternsStageCmd) Run(deps *Dependencies) error {
	p, err := readPattern(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	if err := deps.Library.StagePattern(deps.Ctx, p); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Staged pattern %q for review\n", p.ID)
	return nil
}

// Run executes the patterns approve command.
func (c *PatternsApproveCmd) Run(deps *Dependencies) error {
	var p *sitemapper.Pattern
	if c.File != "" {
		var err error
		if p, err = readPattern(c.File); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
			return err
		}
		if p.ID != "" && p.ID != c.ID {
			err := sitemapper.Errorf(sitemapper.EINVALID, "pattern file defines %q, not %q", p.ID, c.ID)
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
			return err
		}
	}
	if err := deps.Library.ApprovePattern(deps.Ctx, c.ID, p); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Approved pattern %q\n", c.ID)
	return nil
}

// Run executes the patterns reject command.
func (c *PatternsRejectCmd) Run(deps *Dependencies) error {
	if err := deps.Library.RejectPattern(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Rejected pattern %q\n", c.ID)
	return nil
}

// Run executes the patterns init command. Learned and pending patterns
// are kept.
func (c *PatternsInitCmd) Run(deps *Dependencies) error {
	current, err := deps.Patterns.Catalog(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	if len(current.Core) > 0 && !c.Force {
		fmt.Fprintln(deps.Stderr, "error: catalog already has core patterns, use --force to replace them")
		return sitemapper.Errorf(sitemapper.ECONFLICT, "catalog already has core patterns")
	}

	next := flow.DefaultCatalog()
	next.Learned = current.Learned
	next.Pending = current.Pending
	if err := deps.Patterns.Save(deps.Ctx, next); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d core patterns\n", len(next.Core))
	return nil
}

// readPattern decodes one pattern from a JSON or YAML file.
func readPattern(path string) (*sitemapper.Pattern, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, sitemapper.Errorf(sitemapper.ENOTFOUND, "pattern file %q not found", path)
	} else if err != nil {
		return nil, err
	}

	var p sitemapper.Pattern
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid pattern file %q: %v", path, err)
	}
	return &p, nil
}

func printPatterns(w io.Writer, patterns []*sitemapper.Pattern, showSource bool) {
	for _, p := range patterns {
		if showSource {
			fmt.Fprintf(w, "%-20s %-8s %s\n", p.ID, p.Source, p.DisplayName())
		} else {
			fmt.Fprintf(w, "%-20s %s\n", p.ID, p.DisplayName())
		}
		if len(p.Elements) > 0 {
			fmt.Fprintf(w, "  elements: %s\n", strings.Join(p.Elements, ", "))
		}
		if len(p.URLs) > 0 {
			fmt.Fprintf(w, "  urls: %s\n", strings.Join(p.URLs, ", "))
		}
	}
}
