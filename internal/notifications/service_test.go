package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"saaqreg/internal/config"
	"saaqreg/internal/notifications"
)

type captured struct {
	title, tags, priority, body string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func configWithTopic(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configWithTopic(""))
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if err := svc.NotifyRunCompleted(context.Background(), notifications.RunSummary{}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyRunCompletedFormatsSummary(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewService(configWithTopic(srv.URL))

	err := svc.NotifyRunCompleted(context.Background(), notifications.RunSummary{
		RunID:       "abc",
		NoisyPairs:  5,
		Regularized: 2,
		Preserved:   3,
		Elapsed:     90 * time.Second,
		ReportPath:  "/tmp/report.json",
	})
	if err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].title != "saaqreg - Run Complete" || got[0].tags != "saaqreg,run,completed" || got[0].priority != "" {
		t.Fatalf("unexpected headers %+v", got[0])
	}
	want := "Run finished: 2 regularized, 3 preserved of 5 noisy pair(s) in 1m30s\nReport: /tmp/report.json"
	if got[0].body != want {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestNotifyRunCompletedFlagsDegradedRuns(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewService(configWithTopic(srv.URL))

	if err := svc.NotifyRunCompleted(context.Background(), notifications.RunSummary{NoisyPairs: 3, Failed: 1, Degraded: 2}); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	got := requests()[0]
	if got.priority != "high" || !strings.HasSuffix(got.tags, ",warning") {
		t.Fatalf("expected high priority warning, got %+v", got)
	}
	if !strings.Contains(got.body, "1 failed task(s), 2 degraded verdict(s)") {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNotifyRunFailed(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewService(configWithTopic(srv.URL))

	if err := svc.NotifyRunFailed(context.Background(), "run-1", errors.New("dataset unavailable")); err != nil {
		t.Fatalf("NotifyRunFailed: %v", err)
	}
	got := requests()[0]
	if got.body != "Run failed (run-1)\nError: dataset unavailable" || got.priority != "high" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSendReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	svc := notifications.NewService(configWithTopic(srv.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
