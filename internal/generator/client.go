package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recomarr/recomarr/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("generator API key is not configured")
	ErrAPIError      = errors.New("generator API error")
)

// systemPrompt instructs the model to answer with the JSON envelope the
// parser expects and to avoid recommending owned titles.
const systemPrompt = "You are a personal media assistant for a home media server. " +
	"You know the user's existing TV and movie library (Sonarr and Radarr). " +
	"Recommend titles that fit their tastes and never recommend any title that appears in the provided library summary. " +
	"Return your answer strictly as JSON with this shape:\n" +
	`{ "recommendations": [{ "type": "tv or movie", "title": "string", "year": 2020, "reason": "string" } ] }` + "\n" +
	"No extra text."

// summaryLimit caps how much of the library summary is embedded in the
// prompt, keeping the request within a predictable token budget.
const summaryLimit = 8000

// Client calls an OpenAI-compatible chat completions endpoint to produce
// recommendation candidates.
type Client struct {
	httpClient *http.Client
	config     config.GeneratorConfig
	logger     zerolog.Logger
}

// NewClient creates a new generator client.
func NewClient(cfg config.GeneratorConfig, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		config:     cfg,
		logger:     logger.With().Str("component", "generator").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies the endpoint accepts the configured credentials.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}
	return nil
}

// Generate asks the model for recommendations. The library summary is
// embedded in the prompt (truncated), together with the user's request and a
// media-type hint. A response whose content cannot be parsed as the expected
// JSON envelope yields an empty list, not an error.
func (c *Client) Generate(ctx context.Context, req Request) ([]Recommendation, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	summary := string(req.LibrarySummary)
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}

	userContent := fmt.Sprintf(
		"Here is a JSON summary of my current library (sampled):\n%s\n\nMy request: %s\n\n%s",
		summary, req.Prompt, typeHint(req.MediaType),
	)

	body := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error().Int("status", resp.StatusCode).Msg("completion request failed")
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, truncate(string(raw), 200))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		c.logger.Warn().Msg("completion returned no choices")
		return []Recommendation{}, nil
	}

	content := extractJSON(completion.Choices[0].Message.Content)

	var envelope recommendationsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		c.logger.Warn().Err(err).Str("content", truncate(content, 200)).Msg("failed to parse completion content")
		return []Recommendation{}, nil
	}

	c.logger.Debug().Int("count", len(envelope.Recommendations)).Msg("generated candidates")
	return envelope.Recommendations, nil
}

func typeHint(mediaType string) string {
	switch mediaType {
	case "tv":
		return "Focus only on TV shows."
	case "movie":
		return "Focus only on movies."
	default:
		return "You may mix TV and movies."
	}
}

// extractJSON strips a Markdown code fence some models wrap around JSON
// output.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
