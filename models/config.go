package models

import (
	"log/slog"
	"time"
)

// Enrichment provider identifiers.
const (
	ProviderGoogle = "google"
	ProviderOllama = "ollama"
	ProviderChat   = "chat"
)

// Config is the immutable process configuration, read once at startup from
// the environment and passed by value into the pipelines.
type Config struct {
	// Provider selection and credentials.
	Provider     string
	GoogleAPIKey string
	GeminiModel  string
	OllamaURL    string
	OllamaModel  string
	ChatURL      string
	ChatAPIKey   string
	ChatModel    string

	// Pipeline tuning.
	Workers        int
	MaxAttempts    int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
	MinBodyChars   int

	// Logging and bookkeeping.
	LogFile    string
	LogLevel   slog.Level
	LedgerPath string
}

// SourcesConfig describes the corpus layout: which source names to walk under
// the data root and the per-source subdirectory names. Loaded from
// sources.yaml when present.
type SourcesConfig struct {
	Sources        []string `yaml:"sources"`
	ArticlesDir    string   `yaml:"articles_dir"`
	TransformedDir string   `yaml:"transformed_dir"`
	EnrichedDir    string   `yaml:"enriched_dir"`
}

// DefaultSourcesConfig matches the legacy corpus layout.
func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		Sources:        []string{"app", "dawn"},
		ArticlesDir:    "articles",
		TransformedDir: "transformed_articles",
		EnrichedDir:    "transformed_articles_ner",
	}
}
