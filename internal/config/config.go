// Package config reads process configuration once at startup: environment
// variables for provider selection and tuning, an optional sources.yaml for
// the corpus layout, and the logger setup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hashimsd/articleforge/models"
)

// Load builds the immutable process configuration from the environment.
func Load() models.Config {
	return models.Config{
		Provider:     strings.ToLower(getEnv("ENRICHMENT_PROVIDER", models.ProviderGoogle)),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		OllamaURL:    os.Getenv("OLLAMA_API_URL"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "llama3.1"),
		ChatURL:      os.Getenv("CHAT_API_URL"),
		ChatAPIKey:   os.Getenv("CHAT_API_KEY"),
		ChatModel:    os.Getenv("CHAT_MODEL"),

		Workers:        getEnvInt("AF_WORKERS", 4),
		MaxAttempts:    getEnvInt("AF_MAX_ATTEMPTS", 3),
		BackoffBase:    getEnvDuration("AF_BACKOFF_BASE", 2*time.Second),
		RequestTimeout: getEnvDuration("AF_REQUEST_TIMEOUT", 5*time.Minute),
		MinBodyChars:   getEnvInt("AF_MIN_BODY_CHARS", 50),

		LogFile:    getEnv("AF_LOG_FILE", "logs/articleforge.log"),
		LogLevel:   parseLogLevel(getEnv("AF_LOG_LEVEL", "INFO")),
		LedgerPath: getEnv("AF_LEDGER_PATH", "articleforge.db"),
	}
}

// LoadSources reads the corpus layout from sources.yaml when the file exists,
// falling back to the legacy defaults otherwise. Fields left empty in the
// file keep their defaults.
func LoadSources(path string) (models.SourcesConfig, error) {
	cfg := models.DefaultSourcesConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	var file models.SourcesConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(file.Sources) > 0 {
		cfg.Sources = file.Sources
	}
	if file.ArticlesDir != "" {
		cfg.ArticlesDir = file.ArticlesDir
	}
	if file.TransformedDir != "" {
		cfg.TransformedDir = file.TransformedDir
	}
	if file.EnrichedDir != "" {
		cfg.EnrichedDir = file.EnrichedDir
	}
	return cfg, nil
}

// DiscoverSources lists source directories under the data root, used when no
// explicit source list is configured. The progress directory is bookkeeping,
// not a source.
func DiscoverSources(dataRoot string) ([]string, error) {
	entries, err := os.ReadDir(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("listing data root: %w", err)
	}
	var sources []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != "progress" {
			sources = append(sources, e.Name())
		}
	}
	return sources, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
