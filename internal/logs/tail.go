package logs

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"saaqreg/internal/logging"
)

// Filter selects JSON log lines. Empty fields match everything; a filter
// with any field set drops lines that are not JSON.
type Filter struct {
	Pair      string
	EventType string
	MinLevel  string
}

func (f Filter) empty() bool {
	return f.Pair == "" && f.EventType == "" && f.MinLevel == ""
}

// Match reports whether a log line passes the filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if f.Pair != "" && !strings.EqualFold(stringField(record, logging.FieldPair), f.Pair) {
		return false
	}
	if f.EventType != "" && stringField(record, logging.FieldEventType) != f.EventType {
		return false
	}
	if f.MinLevel != "" && levelRank(stringField(record, "level")) < levelRank(f.MinLevel) {
		return false
	}
	return true
}

func stringField(record map[string]any, key string) string {
	value, ok := record[key].(string)
	if !ok {
		return ""
	}
	return value
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 0
	case "info", "":
		return 1
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}

// TailOptions controls Tail.
type TailOptions struct {
	// Limit caps the number of returned lines; zero or less returns every
	// matching line.
	Limit  int
	Filter Filter
}

// Tail returns the last matching lines of the file at path, oldest first.
// A missing file yields no lines.
func Tail(path string, opts TailOptions) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if opts.Limit <= 0 {
		var lines []string
		for scanner.Scan() {
			if line := scanner.Text(); opts.Filter.Match(line) {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, opts.Limit)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !opts.Filter.Match(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % opts.Limit
		if count < opts.Limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == opts.Limit {
		for i := range count {
			lines[i] = ring[(idx+i)%opts.Limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
