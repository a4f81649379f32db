package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaqreg/internal/services"
)

func sdkServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
}

func TestCompleteJSONUsesJSONMode(t *testing.T) {
	server := sdkServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		format, _ := body["response_format"].(map[string]any)
		assert.Equal(t, "json_object", format["type"])
		writeCompletion(w, `{"classification":"spelling_variant","confidence":0.9}`)
	})

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o-mini"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	require.NoError(t, err)
	require.JSONEq(t, `{"classification":"spelling_variant","confidence":0.9}`, content)
}

func TestHealthCheck(t *testing.T) {
	server := sdkServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(w, `{"ok":true}`)
	})

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o-mini"})
	require.NoError(t, client.HealthCheck(context.Background()))
}

func TestCompleteJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := sdkServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
			return
		}
		writeCompletion(w, `{"ok":true}`)
	})

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o-mini", RetryAttempts: 2})
	client.delay = time.Millisecond
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, content)
	require.Equal(t, int32(2), calls.Load())
}

func TestCompleteJSONDoesNotRetryAuthFailures(t *testing.T) {
	var calls atomic.Int32
	server := sdkServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	client := NewClient(Config{APIKey: "sk-bad", BaseURL: server.URL, Model: "gpt-4o-mini", RetryAttempts: 3})
	client.delay = time.Millisecond
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	require.Error(t, err)
	require.True(t, errors.Is(err, services.ErrExternalTool))
	require.Equal(t, int32(1), calls.Load())
}
