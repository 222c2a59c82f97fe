package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/sitemapper"
	"github.com/fwojciec/sitemapper/flow"
	"github.com/ilyakaznacheev/cleanenv"
)

// Embedder backends.
const (
	EmbedderNone   = "none"
	EmbedderGemini = "gemini"
	EmbedderOpenAI = "openai"
)

// Catalog stores.
const (
	CatalogStoreFile   = "file"
	CatalogStoreSQLite = "sqlite"
)

// Config holds settings read from a YAML file and the environment.
// Environment variables take precedence over the file.
type Config struct {
	DBPath       string `yaml:"db_path" env:"SITEMAPPER_DB"`
	Catalog      string `yaml:"catalog" env:"SITEMAPPER_CATALOG"`
	CatalogStore string `yaml:"catalog_store" env:"SITEMAPPER_CATALOG_STORE" env-default:"file"`

	MaxPages          int           `yaml:"max_pages" env:"SITEMAPPER_MAX_PAGES" env-default:"30"`
	LinksPerPage      int           `yaml:"links_per_page" env:"SITEMAPPER_LINKS_PER_PAGE" env-default:"5"`
	MaxLinks          int           `yaml:"max_links" env:"SITEMAPPER_MAX_LINKS" env-default:"100"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"SITEMAPPER_RPS" env-default:"5"`
	PageTimeout       time.Duration `yaml:"page_timeout" env:"SITEMAPPER_PAGE_TIMEOUT" env-default:"30s"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" env-default:"15s"`
	ChromePath        string        `yaml:"chrome_path" env:"SITEMAPPER_CHROME"`

	HappyPathThreshold float64 `yaml:"happy_path_threshold" env-default:"0.7"`
	PartialThreshold   float64 `yaml:"partial_threshold" env-default:"0.3"`

	Embedder       string `yaml:"embedder" env:"SITEMAPPER_EMBEDDER" env-default:"none"`
	EmbeddingModel string `yaml:"embedding_model" env:"SITEMAPPER_EMBEDDING_MODEL"`
	GeminiAPIKey   string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey   string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
}

// LoadConfig reads the YAML file at path, or only the environment when
// path is empty, and fills in default locations under ~/.sitemapper.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, sitemapper.Errorf(sitemapper.EINVALID, "invalid configuration: %v", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultPath("sitemapper.db")
	}
	if cfg.Catalog == "" {
		cfg.Catalog = defaultPath("patterns.json")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Thresholds returns the configured classification thresholds.
func (c *Config) Thresholds() flow.Thresholds {
	return flow.Thresholds{HappyPath: c.HappyPathThreshold, Partial: c.PartialThreshold}
}

// Validate returns an error if a setting is out of range.
func (c *Config) Validate() error {
	switch c.Embedder {
	case EmbedderNone, EmbedderGemini, EmbedderOpenAI:
	default:
		return sitemapper.Errorf(sitemapper.EINVALID, "unknown embedder %q (want none, gemini or openai)", c.Embedder)
	}
	switch c.CatalogStore {
	case CatalogStoreFile, CatalogStoreSQLite:
	default:
		return sitemapper.Errorf(sitemapper.EINVALID, "unknown catalog store %q (want file or sqlite)", c.CatalogStore)
	}
	if c.RequestsPerSecond <= 0 {
		return sitemapper.Errorf(sitemapper.EINVALID, "requests per second must be positive")
	}
	return c.Thresholds().Validate()
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".sitemapper")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}
