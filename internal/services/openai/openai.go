// Package openai adapts the go-openai SDK to the classifier's completion
// interface, for deployments that talk to OpenAI directly instead of
// OpenRouter.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"saaqreg/internal/services"
	"saaqreg/internal/services/llm"
)

const defaultRetryDelay = time.Second

// Config mirrors llm.Config for the SDK-backed client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	RetryAttempts  int
}

// Client issues JSON-mode chat completions through go-openai.
type Client struct {
	client   *goopenai.Client
	model    string
	attempts int
	delay    time.Duration
}

// NewClient builds a client. An empty BaseURL keeps the SDK default.
func NewClient(cfg Config) *Client {
	sdkConfig := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		sdkConfig.BaseURL = base
	}
	if cfg.TimeoutSeconds > 0 {
		sdkConfig.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Client{
		client:   goopenai.NewClientWithConfig(sdkConfig),
		model:    strings.TrimSpace(cfg.Model),
		attempts: attempts,
		delay:    defaultRetryDelay,
	}
}

// CompleteJSON sends a single-turn system/user exchange and returns the
// model's content.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		content, err := c.once(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if attempt == c.attempts || !retryable(err) {
			break
		}
		if err := wait(ctx, c.delay*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "classifier", "openai complete",
		fmt.Sprintf("failed after %d attempt(s)", c.attempts), lastErr)
}

// HealthCheck verifies the key and model answer.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	return llm.CheckHealthPayload(content)
}

func (c *Client) once(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	for _, choice := range resp.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", errors.New("no response content")
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return false
}

func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
