package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"saaqreg/internal/fileutil"
	"saaqreg/internal/services"
)

// ErrWrite marks report output failures. They are always fatal.
var ErrWrite = errors.New("report write failed")

// FileName returns the default file name for r in format.
func (r *Report) FileName(format string) string {
	ext := "json"
	switch strings.ToLower(format) {
	case FormatTable:
		ext = "txt"
	case FormatMarkdown, "md":
		ext = "md"
	}
	id := r.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	name := "regularization-" + r.GeneratedAt.UTC().Format("20060102T150405Z")
	if id != "" {
		name += "-" + id
	}
	return name + "." + ext
}

// Write renders r and writes it to path. The directory is locked for the
// duration of the write and the file is replaced atomically.
func (r *Report) Write(path, format string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, format); err != nil {
		return services.Wrap(services.ErrConfiguration, "report", "render", "Failed to render report", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrStorage, "report", "write", "Failed to write report", fmt.Errorf("%w: %w", ErrWrite, err))
	}
	return nil
}
