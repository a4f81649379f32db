package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func newJSONRequest(model, systemPrompt, userPrompt string) chatRequest {
	return chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatChoice struct {
	Message chatReply `json:"message"`
	// Some providers answer with the streaming schema even when stream=false.
	Delta        chatReply `json:"delta"`
	Text         string    `json:"text"`
	FinishReason string    `json:"finish_reason"`
}

type chatReply struct {
	Content   string `json:"content"`
	Refusal   string `json:"refusal"`
	ToolCalls []struct {
		Function struct {
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

// content returns the first usable payload across choices.
func (r chatResponse) content() (string, string) {
	var finish string
	for _, choice := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		for _, candidate := range []string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if trimmed := strings.TrimSpace(candidate); trimmed != "" {
				return trimmed, finish
			}
		}
		for _, call := range choice.Message.ToolCalls {
			if args := strings.TrimSpace(call.Function.Arguments); args != "" {
				return args, finish
			}
		}
	}
	return "", finish
}

func (r chatResponse) refusal() string {
	for _, choice := range r.Choices {
		if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

// statusError is a non-2xx response.
type statusError struct {
	StatusCode int
	Body       string
	RetryAfter string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, snippet(e.Body))
}

// emptyContentError is a 2xx response without a usable payload. Models
// occasionally do this under load, so it is retried.
type emptyContentError struct {
	FinishReason string
	Refusal      string
	Body         string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("empty content (finish_reason=%q, refusal=%q, response=%s)", e.FinishReason, e.Refusal, snippet(e.Body))
}

func (c *Client) send(ctx context.Context, op string, payload chatRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: http (timeout=%s): %w", op, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &statusError{StatusCode: resp.StatusCode, Body: string(body), RetryAfter: resp.Header.Get("Retry-After")}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("%s: api error: %s", op, strings.TrimSpace(decoded.Error.Message))
	}
	content, finish := decoded.content()
	if content == "" {
		return "", &emptyContentError{FinishReason: finish, Refusal: decoded.refusal(), Body: string(body)}
	}
	return content, nil
}
