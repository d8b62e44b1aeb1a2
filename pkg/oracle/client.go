// Package oracle is the client side of the enrichment boundary: it serializes
// a canonical record to a configured language-model provider and returns a
// structured enrichment result or a typed failure. Providers are unified
// behind one client; the pipeline never sees provider-specific code.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/hashimsd/articleforge/models"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
	defaultTimeout     = 5 * time.Minute
)

// Client calls the configured enrichment provider with bounded retry and
// exponential backoff. Safe for concurrent use by pipeline workers.
type Client struct {
	llm         llms.Model
	provider    string
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	probeURL    string
	httpClient  *http.Client
	logger      *slog.Logger
}

// New builds a Client for the provider named in cfg: "google" for a
// Gemini-style managed API, "ollama" for a self-hosted model server, or
// "chat" for a generic OpenAI-compatible chat-completion endpoint.
func New(cfg models.Config, logger *slog.Logger) (*Client, error) {
	c := &Client{
		provider:    cfg.Provider,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		timeout:     cfg.RequestTimeout,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.backoffBase <= 0 {
		c.backoffBase = defaultBackoffBase
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	var err error
	switch cfg.Provider {
	case models.ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("oracle: provider is %q but no API key is configured", cfg.Provider)
		}
		c.llm, err = googleai.New(context.Background(),
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.GeminiModel),
		)
	case models.ProviderOllama:
		if cfg.OllamaURL == "" {
			return nil, fmt.Errorf("oracle: provider is %q but no server URL is configured", cfg.Provider)
		}
		c.llm, err = ollama.New(
			ollama.WithServerURL(cfg.OllamaURL),
			ollama.WithModel(cfg.OllamaModel),
		)
		c.probeURL = strings.TrimRight(cfg.OllamaURL, "/") + "/api/tags"
	case models.ProviderChat:
		if cfg.ChatURL == "" {
			return nil, fmt.Errorf("oracle: provider is %q but no endpoint URL is configured", cfg.Provider)
		}
		c.llm, err = openai.New(
			openai.WithBaseURL(cfg.ChatURL),
			openai.WithToken(cfg.ChatAPIKey),
			openai.WithModel(cfg.ChatModel),
		)
	default:
		return nil, fmt.Errorf("oracle: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("oracle: creating %s client: %w", cfg.Provider, err)
	}
	return c, nil
}

// Ready probes a self-hosted model server before the first request. Managed
// providers need no probe and always report ready.
func (c *Client) Ready(ctx context.Context) error {
	if c.probeURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeURL, nil)
	if err != nil {
		return fmt.Errorf("oracle: building readiness probe: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oracle: model server not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle: model server returned status %d", resp.StatusCode)
	}
	return nil
}

// Enrich sends the serialized canonical record and returns the parsed
// enrichment result plus the number of attempts consumed. Transport and
// format failures are retried up to the attempt budget with exponentially
// increasing backoff; the last error is returned once attempts are exhausted.
func (c *Client) Enrich(ctx context.Context, recordJSON string) (*models.EnrichmentResult, int, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.call(ctx, recordJSON)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err
		c.logger.Warn("enrichment attempt failed",
			"provider", c.provider, "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)

		if attempt == c.maxAttempts {
			break
		}
		wait := c.backoffBase << (attempt - 1)
		select {
		case <-ctx.Done():
			return nil, attempt, &TransportError{Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
	return nil, c.maxAttempts, lastErr
}

func (c *Client) call(ctx context.Context, recordJSON string) (*models.EnrichmentResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(userPromptTemplate, recordJSON)),
	}

	resp, err := c.llm.GenerateContent(callCtx, messages,
		llms.WithJSONMode(),
		llms.WithTemperature(0.1),
	)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &FormatError{Reason: "provider returned no choices"}
	}
	return ParseResult(resp.Choices[0].Content)
}

// ParseResult decodes the raw model output into an EnrichmentResult. The
// summary, keywords, and entities keys must all be present; keywords may be
// null. Code fences around the object are tolerated; local models add them
// even when told not to.
func ParseResult(content string) (*models.EnrichmentResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, &FormatError{Reason: "response is not a JSON object", Err: err}
	}

	result := &models.EnrichmentResult{Keywords: []string{}}

	raw, ok := fields["summary"]
	if !ok {
		return nil, &FormatError{Reason: "response is missing summary"}
	}
	if err := json.Unmarshal(raw, &result.Summary); err != nil {
		return nil, &FormatError{Reason: "summary is not a string", Err: err}
	}

	raw, ok = fields["keywords"]
	if !ok {
		return nil, &FormatError{Reason: "response is missing keywords"}
	}
	if string(raw) != "null" {
		if err := json.Unmarshal(raw, &result.Keywords); err != nil {
			return nil, &FormatError{Reason: "keywords is not an array of strings", Err: err}
		}
	}

	raw, ok = fields["entities"]
	if !ok {
		return nil, &FormatError{Reason: "response is missing entities"}
	}
	result.Entities = raw

	return result, nil
}
