package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"saaqreg/internal/services"
)

const (
	// DefaultBaseURL is the OpenRouter chat completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client wraps an OpenRouter-style chat completion API. A Client holds no
// conversation state; every call is a fresh single-turn request.
type Client struct {
	cfg        Config
	httpClient *http.Client
	backoff    backoff
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff.base = base
		c.backoff.max = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		backoff:    backoff{base: defaultRetryBaseDelay, max: defaultRetryMaxDelay},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON issues a JSON-only chat completion with the supplied prompts
// and returns the raw content produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: user prompt required")
	case c.cfg.APIKey == "":
		return "", services.Wrap(services.ErrConfiguration, "classifier", "llm complete", "api key required", nil)
	}
	return c.complete(ctx, "llm complete", newJSONRequest(c.cfg.Model, systemPrompt, userPrompt))
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "classifier", "llm health", "api key required", nil)
	}
	content, err := c.complete(ctx, "llm health",
		newJSONRequest(c.cfg.Model, "You must respond with JSON only.", `Respond with {"ok":true}`))
	if err != nil {
		return err
	}
	return CheckHealthPayload(content)
}

// CheckHealthPayload validates the {"ok":true} health response.
func CheckHealthPayload(content string) error {
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) complete(ctx context.Context, op string, payload chatRequest) (string, error) {
	attempts := c.cfg.RetryAttempts
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.send(ctx, op, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt == attempts || ctx.Err() != nil {
			break
		}
		delay, retry := c.backoff.next(err, attempt)
		if !retry {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "classifier", op,
		fmt.Sprintf("failed after %d attempt(s)", attempts), lastErr)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
