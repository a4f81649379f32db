package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type backoff struct {
	base time.Duration
	max  time.Duration
}

// next returns the delay before the attempt following attempt (1-based) and
// whether err is worth retrying at all.
func (b backoff) next(err error, attempt int) (time.Duration, bool) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var empty *emptyContentError
	if errors.As(err, &empty) {
		return b.exponential(attempt), true
	}

	var status *statusError
	if errors.As(err, &status) {
		if status.StatusCode != http.StatusRequestTimeout &&
			status.StatusCode != http.StatusTooManyRequests &&
			status.StatusCode < http.StatusInternalServerError {
			return 0, false
		}
		if wait, ok := parseRetryAfter(status.RetryAfter); ok {
			return b.cap(wait), true
		}
		return b.exponential(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return b.exponential(attempt), true
	}
	return 0, false
}

// exponential doubles the base per attempt: base, 2*base, 4*base, ...
func (b backoff) exponential(attempt int) time.Duration {
	if b.base <= 0 {
		return 0
	}
	delay := b.base
	for i := 1; i < attempt; i++ {
		if b.max > 0 && delay > b.max/2 {
			return b.max
		}
		delay *= 2
	}
	return b.cap(delay)
}

func (b backoff) cap(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if b.max > 0 && delay > b.max {
		return b.max
	}
	return delay
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
