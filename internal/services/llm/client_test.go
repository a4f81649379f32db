package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"saaqreg/internal/services"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, call int32)) *httptest.Server {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, calls.Add(1))
	}))
	t.Cleanup(server.Close)
	return server
}

func writeContent(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	payload := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func noSleep(time.Duration) {}

func TestClientHealthCheck(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request, _ int32) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "saaqreg" {
			t.Errorf("unexpected title header %q", got)
		}
		writeContent(t, w, "```json\n{\"ok\":true}\n```")
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo", Title: "saaqreg"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckUnauthorizedIsNotRetried(t *testing.T) {
	var seen atomic.Int32
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, call int32) {
		seen.Store(call)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	})

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo", RetryAttempts: 3}, WithSleeper(noSleep))
	err := client.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected health check to fail")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if seen.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", seen.Load())
	}
}

func TestCompleteJSONSendsSingleTurnRequest(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request, _ int32) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "demo" || len(req.Messages) != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected roles %+v", req.Messages)
		}
		if req.ResponseFormat["type"] != "json_object" {
			t.Errorf("expected json response format, got %v", req.ResponseFormat)
		}
		writeContent(t, w, `{"classification":"spelling_variant"}`)
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"classification":"spelling_variant"}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCompleteJSONRetriesTransientFailures(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, call int32) {
		switch call {
		case 1:
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			writeContent(t, w, "")
		default:
			writeContent(t, w, `{"ok":true}`)
		}
	})

	var delays []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo", RetryAttempts: 4},
		WithSleeper(func(d time.Duration) { delays = append(delays, d) }),
		WithRetryBackoff(10*time.Millisecond, time.Second),
	)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 20*time.Millisecond {
		t.Fatalf("unexpected retry delays %v", delays)
	}
}

func TestCompleteJSONGivesUpAfterAttempts(t *testing.T) {
	var seen atomic.Int32
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		seen.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo", RetryAttempts: 3}, WithSleeper(noSleep))
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected failure")
	}
	if seen.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", seen.Load())
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestToolCallArgumentsAreAccepted(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"content":"","tool_calls":[{"function":{"arguments":"{\"ok\":true}"}}]}}]}`))
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	type payload struct {
		Classification string  `json:"classification"`
		Confidence     float64 `json:"confidence"`
	}
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", `{"classification":"new_model","confidence":0.8}`, false},
		{"fenced", "```json\n{\"classification\":\"new_model\",\"confidence\":0.8}\n```", false},
		{"prose", `Sure! {"classification":"new_model","confidence":0.8} Hope that helps.`, false},
		{"empty", "  ", true},
		{"garbage", "not json at all", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got payload
			err := DecodeLLMJSON(tc.content, &got)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeLLMJSON: %v", err)
			}
			if got.Classification != "new_model" || got.Confidence != 0.8 {
				t.Fatalf("unexpected payload %+v", got)
			}
		})
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	b := backoff{base: time.Second, max: 10 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second}
	for i, expected := range want {
		if got := b.exponential(i + 1); got != expected {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, expected)
		}
	}
}
