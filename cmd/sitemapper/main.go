package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/crawl"
	"github.com/fwojciec/sitemapper/flow"
	"github.com/fwojciec/sitemapper/fs"
	"github.com/fwojciec/sitemapper/gemini"
	"github.com/fwojciec/sitemapper/goquery"
	"github.com/fwojciec/sitemapper/htmltomarkdown"
	smhttp "github.com/fwojciec/sitemapper/http"
	"github.com/fwojciec/sitemapper/inmem"
	"github.com/fwojciec/sitemapper/openai"
	"github.com/fwojciec/sitemapper/readability"
	"github.com/fwojciec/sitemapper/rod"
	smslog "github.com/fwojciec/sitemapper/slog"
	"github.com/fwojciec/sitemapper/sqlite"
	"github.com/fwojciec/sitemapper/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present.
	_ = godotenv.Load()

	// Interrupt stops the crawl; the partial run is still saved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config overrides LoadConfig when set before calling Run().
	Config *Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Crawler replaces the browser and HTTP crawler, for end-to-end testing.
	Crawler SiteCrawler
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitemapper"),
		kong.Description("Map a website's interactive surface and discover its user flows"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitemapper --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := m.Config
	if cfg == nil {
		if cfg, err = LoadConfig(cli.Config); err != nil {
			return err
		}
	}
	if cli.DB != "" {
		cfg.DBPath = cli.DB
	}
	if cli.Catalog != "" {
		cfg.Catalog = cli.Catalog
	}
	deps.Config = cfg

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITEMAPPER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	defer m.Close()

	deps.SiteMaps = sqlite.NewSiteMapService(m.DB)
	if cli.Verbose {
		deps.SiteMaps = smslog.NewLoggingSiteMapService(deps.SiteMaps, logger)
	}

	if cfg.CatalogStore == CatalogStoreSQLite {
		deps.Patterns = sqlite.NewPatternStore(m.DB)
	} else {
		deps.Patterns = fs.NewPatternStore(cfg.Catalog)
	}
	var repo sitemapper.PatternRepository = deps.Patterns
	if cli.Verbose {
		repo = smslog.NewLoggingPatternRepository(repo, logger)
	}

	switch command := strings.Fields(kongCtx.Command())[0]; command {
	case "crawl":
		if m.Crawler == nil {
			crawler, closeFn := newCrawler(cfg, &cli.Crawl, logger, cli.Verbose, stderr)
			defer closeFn()
			m.Crawler = crawler
		}
		deps.Crawler = m.Crawler
		if cli.Crawl.Discover {
			if deps.Discoverer, err = newDiscoverer(ctx, cfg, cfg.Thresholds(), repo, logger, cli.Verbose, stderr); err != nil {
				return err
			}
		}

	case "discover":
		thresholds := cfg.Thresholds()
		if cli.Discover.Threshold != nil {
			thresholds.HappyPath = *cli.Discover.Threshold
		}
		if cli.Discover.PartialThreshold != nil {
			thresholds.Partial = *cli.Discover.PartialThreshold
		}
		if err := thresholds.Validate(); err != nil {
			return err
		}
		if deps.Discoverer, err = newDiscoverer(ctx, cfg, thresholds, repo, logger, cli.Verbose, stderr); err != nil {
			return err
		}

	case "patterns":
		scorer := flow.NewScorer(ctx, repo)
		if err := scorer.CatalogErr(); err != nil {
			fmt.Fprintf(stderr, "error: cannot read pattern catalog: %s\n", sitemapper.ErrorMessage(err))
			return err
		}
		deps.Library = scorer
	}

	return kongCtx.Run(deps)
}

// newCrawler wires the rendering fetcher, the HTTP fallback and the
// extractors. A browser that cannot start leaves an HTTP-only crawler.
func newCrawler(cfg *Config, cmd *CrawlCmd, logger *slog.Logger, verbose bool, stderr io.Writer) (*crawl.Crawler, func()) {
	var closers []func() error
	closeFn := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var fallback sitemapper.Fetcher = smhttp.NewFetcher(smhttp.WithTimeout(cfg.HTTPTimeout))
	if verbose {
		fallback = smslog.NewLoggingFetcher(fallback, logger)
	}

	var extractor sitemapper.Extractor = trafilatura.NewExtractor()
	if cmd.Extractor == "readability" {
		extractor = readability.NewExtractor()
	}

	loader := &crawl.Loader{
		Fallback:   fallback,
		Extractor:  extractor,
		Converter:  htmltomarkdown.NewConverter(),
		Summarizer: goquery.NewSummarizer(),
	}

	if !cmd.NoBrowser {
		renderer, err := rod.NewFetcher(
			rod.WithFetchTimeout(cfg.PageTimeout),
			rod.WithManagerOptions(
				rod.WithHeadless(!cmd.Headful),
				rod.WithBin(cfg.ChromePath),
				rod.WithUserAgent(smhttp.UserAgent),
			),
		)
		if err != nil {
			fmt.Fprintf(stderr, "warning: browser unavailable, using plain HTTP: %v\n", err)
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --no-browser")
		} else {
			closers = append(closers, renderer.Close)
			loader.Renderer = renderer
			if verbose {
				loader.Renderer = smslog.NewLoggingFetcher(renderer, logger)
			}
		}
	}

	var pages sitemapper.PageFetcher = loader
	if verbose {
		pages = smslog.NewLoggingPageFetcher(loader, logger)
	}

	maxPages := cfg.MaxPages
	if cmd.MaxPages > 0 {
		maxPages = cmd.MaxPages
	}

	c := &crawl.Crawler{
		Fetcher:      pages,
		Elements:     goquery.NewElementExtractor(),
		Links:        goquery.NewLinkExtractor(goquery.WithMaxLinks(cfg.MaxLinks)),
		RateLimiter:  crawl.NewDomainLimiter(cfg.RequestsPerSecond),
		MaxPages:     maxPages,
		LinksPerPage: cfg.LinksPerPage,
		PageTimeout:  cfg.PageTimeout,
	}
	if cmd.Robots {
		c.Robots = smhttp.NewRobotsPolicy(&nethttp.Client{Timeout: cfg.HTTPTimeout})
	}
	return c, closeFn
}

// newDiscoverer builds the flow scorer. An empty catalog falls back to the
// built-in patterns.
func newDiscoverer(ctx context.Context, cfg *Config, thresholds flow.Thresholds, repo sitemapper.PatternRepository, logger *slog.Logger, verbose bool, stderr io.Writer) (sitemapper.FlowDiscoverer, error) {
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if c, err := repo.Catalog(ctx); err == nil && len(c.Core) == 0 && len(c.Learned) == 0 {
		fmt.Fprintln(stderr, "Hint: the pattern catalog is empty, using built-in patterns. Run 'sitemapper patterns init' to store them.")
		repo = inmem.NewPatternStore(flow.DefaultCatalog())
	}

	scorer := flow.NewScorer(ctx, repo, flow.WithEmbedder(embedder), flow.WithThresholds(thresholds))
	if err := scorer.CatalogErr(); err != nil {
		fmt.Fprintf(stderr, "warning: pattern catalog unavailable, no patterns will match: %s\n", sitemapper.ErrorMessage(err))
	}
	if embedder.Enabled() && !scorer.SemanticEnabled() {
		fmt.Fprintln(stderr, "warning: pattern embeddings failed, using lexical scoring")
	}

	if verbose {
		return smslog.NewLoggingDiscoverer(scorer, logger), nil
	}
	return scorer, nil
}

func newEmbedder(ctx context.Context, cfg *Config) (sitemapper.Embedder, error) {
	switch cfg.Embedder {
	case EmbedderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, sitemapper.Errorf(sitemapper.EINVALID, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewEmbedder(client, gemini.WithModel(cfg.EmbeddingModel)), nil
	case EmbedderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, sitemapper.Errorf(sitemapper.EINVALID, "OPENAI_API_KEY not set")
		}
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		return openai.NewEmbedder(client, openai.WithModel(cfg.EmbeddingModel)), nil
	default:
		return sitemapper.NopEmbedder{}, nil
	}
}
