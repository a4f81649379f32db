package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saaqreg/internal/config"
)

const userAgent = "saaqreg/0.1"

// RunSummary is the content of a run-completed notification.
type RunSummary struct {
	RunID       string
	DryRun      bool
	NoisyPairs  int
	Regularized int
	Preserved   int
	Failed      int
	Degraded    int
	Elapsed     time.Duration
	ReportPath  string
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifyRunFailed(ctx context.Context, runID string, err error) error
	TestNotification(ctx context.Context) error
	Enabled() bool
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Enabled() bool { return true }

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	var b strings.Builder
	if summary.DryRun {
		fmt.Fprintf(&b, "Dry run finished: %d noisy pair(s)", summary.NoisyPairs)
	} else {
		fmt.Fprintf(&b, "Run finished: %d regularized, %d preserved of %d noisy pair(s)",
			summary.Regularized, summary.Preserved, summary.NoisyPairs)
	}
	if summary.Elapsed > 0 {
		fmt.Fprintf(&b, " in %s", summary.Elapsed.Round(time.Second))
	}
	if summary.Failed > 0 || summary.Degraded > 0 {
		fmt.Fprintf(&b, "\n%d failed task(s), %d degraded verdict(s)", summary.Failed, summary.Degraded)
	}
	if summary.ReportPath != "" {
		fmt.Fprintf(&b, "\nReport: %s", summary.ReportPath)
	}

	data := payload{
		title:   "saaqreg - Run Complete",
		message: b.String(),
		tags:    []string{"saaqreg", "run", "completed"},
	}
	if summary.Failed > 0 || summary.Degraded > 0 {
		data.tags = append(data.tags, "warning")
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID string, err error) error {
	message := "Run failed"
	if runID = strings.TrimSpace(runID); runID != "" {
		message += " (" + runID + ")"
	}
	if err != nil {
		message += "\nError: " + err.Error()
	}
	return n.send(ctx, payload{
		title:    "saaqreg - Run Failed",
		message:  message,
		tags:     []string{"saaqreg", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "saaqreg - Test",
		message:  "Notification system test",
		tags:     []string{"saaqreg", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Enabled() bool                                        { return false }
func (noopService) NotifyRunCompleted(context.Context, RunSummary) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
