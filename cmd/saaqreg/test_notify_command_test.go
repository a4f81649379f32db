package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type ntfyRecorder struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *ntfyRecorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...), append([]string(nil), r.bodies...)
}

func startNtfy(t *testing.T) (*httptest.Server, *ntfyRecorder) {
	t.Helper()
	rec := &ntfyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.titles = append(rec.titles, r.Header.Get("Title"))
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestTestNotifyDisabledWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Notifications disabled")
}

func TestTestNotifySendsToTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	srv, rec := startNtfy(t)
	env.cfg.Notifications.NtfyTopic = srv.URL
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	require.NoError(t, err)
	requireContains(t, out, "Test notification sent")

	titles, _ := rec.snapshot()
	require.Equal(t, []string{"saaqreg - Test"}, titles)
}

func TestRunSendsCompletionNotification(t *testing.T) {
	env := setupCLITestEnv(t)
	srv, rec := startNtfy(t)
	env.cfg.Notifications.NtfyTopic = srv.URL
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	require.NoError(t, err)

	titles, bodies := rec.snapshot()
	require.Equal(t, []string{"saaqreg - Run Complete"}, titles)
	require.True(t, strings.HasPrefix(bodies[0], "Run finished: 2 regularized, 3 preserved of 5 noisy pair(s)"), bodies[0])
}
