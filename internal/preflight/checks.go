package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"saaqreg/internal/catalog"
	"saaqreg/internal/dataset"
)

const classifierTimeout = 30 * time.Second

// CheckDataset opens the registration dataset and counts its rows.
func CheckDataset(ctx context.Context, path string) Result {
	const name = "Dataset"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Required: true, Detail: "not configured"}
	}
	store, err := dataset.Open(ctx, path)
	if err != nil {
		return Result{Name: name, Required: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Required: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if n == 0 {
		return Result{Name: name, Required: true, Detail: fmt.Sprintf("%s (error: no registration rows)", path)}
	}
	return Result{Name: name, Passed: true, Required: true, Detail: fmt.Sprintf("%s (%s rows)", path, humanize.Comma(int64(n)))}
}

// CheckCatalog opens the authoritative catalog and counts its rows.
func CheckCatalog(ctx context.Context, path string, separators []string) Result {
	const name = "Catalog"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured; authority verdicts will degrade"}
	}
	store, err := catalog.Open(ctx, path, separators)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s entries)", path, humanize.Comma(int64(n)))}
}

// CheckDirectoryAccess verifies that the directory exists, is
// readable/writable, and reports its free space.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	free := fs.Bavail * uint64(fs.Bsize)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok, %s free)", path, humanize.IBytes(free))}
}

// HealthChecker is implemented by anything that can probe the classifier.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckClassifier probes the classifier with a bounded timeout.
func CheckClassifier(ctx context.Context, name string, checker HealthChecker) Result {
	if checker == nil {
		return Result{Name: name, Detail: "not configured"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, classifierTimeout)
	defer cancel()
	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
