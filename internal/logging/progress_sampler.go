package logging

import "sync"

// ProgressSampler suppresses per-task progress logs so a run only reports
// every Nth completion plus the final one. It is safe for concurrent use.
type ProgressSampler struct {
	mu    sync.Mutex
	every int
	last  int
}

// NewProgressSampler constructs a sampler that emits every `every`
// completions (default 10).
func NewProgressSampler(every int) *ProgressSampler {
	if every <= 0 {
		every = 10
	}
	return &ProgressSampler{every: every}
}

// ShouldLog reports whether the progress update for done out of total
// completed tasks should be logged. Counts at or below the last emitted value
// are ignored so out-of-order callers never log twice.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if done <= s.last {
		return false
	}
	if done/s.every > s.last/s.every || (total > 0 && done >= total) {
		s.last = done
		return true
	}
	return false
}
