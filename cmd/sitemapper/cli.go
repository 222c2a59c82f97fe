package main

import (
	"context"
	"io"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/crawl"
)

// SiteCrawler maps one site.
type SiteCrawler interface {
	Crawl(ctx context.Context, startURL string, progress crawl.ProgressFunc) (*crawl.Result, error)
}

// PatternLibrary administers the pattern catalog.
type PatternLibrary interface {
	Patterns() []*sitemapper.Pattern
	Pending() []*sitemapper.Pattern
	StagePattern(ctx context.Context, p *sitemapper.Pattern) error
	ApprovePattern(ctx context.Context, id string, p *sitemapper.Pattern) error
	RejectPattern(ctx context.Context, id string) error
}

// CatalogStore is a pattern repository that can be replaced wholesale.
type CatalogStore interface {
	sitemapper.PatternRepository
	Save(ctx context.Context, c *sitemapper.Catalog) error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *Config
	SiteMaps   sitemapper.SiteMapService
	Patterns   CatalogStore
	Library    PatternLibrary
	Discoverer sitemapper.FlowDiscoverer
	Crawler    SiteCrawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"YAML configuration file" env:"SITEMAPPER_CONFIG" type:"path"`
	DB      string `help:"SQLite database path (overrides config)"`
	Catalog string `help:"Pattern catalog path (overrides config)"`
	Verbose bool   `short:"v" help:"Log service calls to stderr"`

	Crawl    CrawlCmd    `cmd:"" help:"Crawl a site and save the run"`
	Discover DiscoverCmd `cmd:"" help:"Discover user flows in a saved run or site map file"`
	Runs     RunsCmd     `cmd:"" help:"List saved crawl runs"`
	Patterns PatternsCmd `cmd:"" help:"Manage the flow pattern catalog"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL        string `arg:"" help:"Start URL"`
	MaxPages   int    `short:"n" help:"Page budget (overrides config)"`
	Headful    bool   `help:"Show the browser window"`
	NoBrowser  bool   `name:"no-browser" help:"Fetch with plain HTTP only"`
	Robots     bool   `help:"Skip links disallowed by robots.txt"`
	Extractor  string `default:"trafilatura" enum:"trafilatura,readability" help:"Main content extractor (trafilatura, readability)"`
	Output     string `short:"o" help:"Write the site map as JSON to this file"`
	SitemapXML string `name:"sitemap-xml" help:"Write the crawled pages as an XML sitemap to this file"`
	Discover   bool   `help:"Discover user flows after crawling"`
	Partial    bool   `help:"Include partial flows"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	Source           string   `arg:"" help:"Run ID or site map JSON file"`
	Partial          bool     `help:"Include partial flows"`
	Threshold        *float64 `help:"Happy path confidence threshold (overrides config)"`
	PartialThreshold *float64 `name:"partial-threshold" help:"Partial flow confidence threshold (overrides config)"`
	JSON             bool     `help:"Print the result as JSON"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct{}

// PatternsCmd groups the catalog administration subcommands.
type PatternsCmd struct {
	List    PatternsListCmd    `cmd:"" help:"List active patterns"`
	Pending PatternsPendingCmd `cmd:"" help:"List patterns awaiting review"`
	Stage   PatternsStageCmd   `cmd:"" help:"Stage a candidate pattern from a JSON or YAML file"`
	Approve PatternsApproveCmd `cmd:"" help:"Approve a pending pattern"`
	Reject  PatternsRejectCmd  `cmd:"" help:"Reject a pending pattern"`
	Init    PatternsInitCmd    `cmd:"" help:"Write the built-in patterns to the catalog"`
}

// PatternsListCmd is the "patterns list" subcommand.
type PatternsListCmd struct{}

// PatternsPendingCmd is the "patterns pending" subcommand.
type PatternsPendingCmd struct{}

// PatternsStageCmd is the "patterns stage" subcommand.
type PatternsStageCmd struct {
	File string `arg:"" help:"Pattern file (.json, .yaml or .yml)"`
}

// PatternsApproveCmd is the "patterns approve" subcommand.
type PatternsApproveCmd struct {
	ID   string `arg:"" help:"Pattern ID"`
	File string `short:"f" help:"Approve this pattern definition instead of the staged one"`
}

// PatternsRejectCmd is the "patterns reject" subcommand.
type PatternsRejectCmd struct {
	ID string `arg:"" help:"Pattern ID"`
}

// PatternsInitCmd is the "patterns init" subcommand.
type PatternsInitCmd struct {
	Force bool `help:"Replace an existing catalog"`
}
