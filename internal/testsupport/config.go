package testsupport

import (
	"path/filepath"
	"testing"

	"saaqreg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Dataset = filepath.Join(base, "dataset.db")
	cfgVal.Paths.Catalog = filepath.Join(base, "catalog.db")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LLM.APIKey = "test"
	cfgVal.LLM.RetryAttempts = 1
	cfgVal.LLM.TimeoutSeconds = 5
	cfgVal.Pipeline.Workers = 4
	cfgVal.Pipeline.MaxInflightClassifier = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDataset writes the registrations to the config's dataset path.
func WithDataset(rows ...Registration) ConfigOption {
	return func(b *configBuilder) {
		WriteDataset(b.t, b.cfg.Paths.Dataset, rows...)
	}
}

// WithCatalog writes the entries to the config's catalog path.
func WithCatalog(entries ...CatalogEntry) ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Paths.Catalog, entries...)
	}
}

// WithLLMEndpoint points the classifier at a test server.
func WithLLMEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithWorkers overrides the worker pool width.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
		if b.cfg.Pipeline.MaxInflightClassifier > n {
			b.cfg.Pipeline.MaxInflightClassifier = n
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Dataset)
}
