package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"saaqreg/internal/logging"
	"saaqreg/internal/services"
)

// ErrNoRuns is returned when a log directory holds no run logs.
var ErrNoRuns = errors.New("no run logs found")

// Run describes one per-run log file.
type Run struct {
	ID      string
	Started time.Time
	Path    string
	Size    int64
}

// List returns the run logs in dir, newest first.
func List(dir string) ([]Run, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logging.RunLogPattern))
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	runs := make([]Run, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		run := parseRunName(filepath.Base(path))
		run.Path = path
		run.Size = info.Size()
		if run.Started.IsZero() {
			run.Started = info.ModTime().UTC()
		}
		runs = append(runs, run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].Started.Equal(runs[j].Started) {
			return runs[i].Started.After(runs[j].Started)
		}
		return runs[i].Path > runs[j].Path
	})
	return runs, nil
}

// Find returns the newest run whose id starts with id. An empty id selects
// the newest run.
func Find(dir, id string) (Run, error) {
	runs, err := List(dir)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w in %s", ErrNoRuns, dir)
	}
	want := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
	if want == "" {
		return runs[0], nil
	}
	for _, run := range runs {
		if strings.HasPrefix(want, run.ID) || strings.HasPrefix(run.ID, want) {
			return run, nil
		}
	}
	return Run{}, services.Wrap(services.ErrNotFound, "logs", "find", fmt.Sprintf("no run log matches %q in %s", id, dir), nil)
}

// parseRunName reads "saaqreg-<20060102T150405>-<id>.log".
func parseRunName(name string) Run {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "saaqreg-"), ".log")
	stamp, id, ok := strings.Cut(trimmed, "-")
	if !ok {
		return Run{ID: trimmed}
	}
	started, err := time.Parse("20060102T150405", stamp)
	if err != nil {
		return Run{ID: trimmed}
	}
	return Run{ID: strings.ToLower(id), Started: started.UTC()}
}
