package main

import (
	"fmt"

	"github.com/fwojciec/sitemapper"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.SiteMaps.FindSiteMaps(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitemapper.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'sitemapper crawl' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %-9s  %3d pages  %4d elements  %s  %s\n",
			r.ID, r.State, r.PagesCrawled, r.ElementsDiscovered, r.StartedAt.Format("2006-01-02 15:04"), r.URL)
	}
	return nil
}
