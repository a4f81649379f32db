package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Dataset   string `toml:"dataset"`
	Catalog   string `toml:"catalog"`
	ReportDir string `toml:"report_dir"`
	LogDir    string `toml:"log_dir"`
}

// Periods selects the trusted reference years and the evaluation years.
type Periods struct {
	ReferenceStart  int `toml:"reference_start"`
	ReferenceEnd    int `toml:"reference_end"`
	EvaluationStart int `toml:"evaluation_start"`
	EvaluationEnd   int `toml:"evaluation_end"`
}

// Matching contains candidate generation settings.
type Matching struct {
	CandidateFloor        float64  `toml:"candidate_floor"`
	MakeThreshold         float64  `toml:"make_threshold"`
	EditWeight            float64  `toml:"edit_weight"`
	TranspositionWeight   float64  `toml:"transposition_weight"`
	BoostScore            float64  `toml:"boost_score"`
	Separators            []string `toml:"separators"`
	NumericVetoRatio      float64  `toml:"numeric_veto_ratio"`
	NumericVetoMinGap     int      `toml:"numeric_veto_min_gap"`
	TwoPass               bool     `toml:"two_pass"`
	RequireSharedCategory bool     `toml:"require_shared_category"`
	PriorityCategories    []string `toml:"priority_categories"`
}

// Validation contains validator confidences and windows.
type Validation struct {
	AuthorityConfidence              float64 `toml:"authority_confidence"`
	AuthorityNoisyOnlyConfidence     float64 `toml:"authority_noisy_only_confidence"`
	AuthorityCandidateOnlyConfidence float64 `toml:"authority_candidate_only_confidence"`
	TemporalConfidence               float64 `toml:"temporal_confidence"`
	TemporalGraceConfidence          float64 `toml:"temporal_grace_confidence"`
	GraceYears                       int     `toml:"grace_years"`
	CatalogCacheSize                 int     `toml:"catalog_cache_size"`
}

// Arbitration contains the decision thresholds.
type Arbitration struct {
	AuthorityPreventThreshold float64 `toml:"authority_prevent_threshold"`
	TemporalPreventThreshold  float64 `toml:"temporal_prevent_threshold"`
	ClassifierThreshold       float64 `toml:"classifier_threshold"`
	AutoRegularizeScore       float64 `toml:"auto_regularize_score"`
}

// LLM contains classifier connection settings.
type LLM struct {
	Provider          string `toml:"provider"`
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RetryAttempts     int    `toml:"retry_attempts"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// Pipeline contains orchestration knobs.
type Pipeline struct {
	Workers               int `toml:"workers"`
	MaxInflightClassifier int `toml:"max_inflight_classifier"`
	ProgressEvery         int `toml:"progress_every"`
	TaskTimeoutSeconds    int `toml:"task_timeout_seconds"`
}

// Report contains output settings.
type Report struct {
	Format           string `toml:"format"`
	IncludePreserved bool   `toml:"include_preserved"`
}

// Notifications contains ntfy delivery settings. An empty topic disables
// notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for saaqreg.
//
// Configuration sections by subsystem:
//   - Paths: dataset and catalog databases, report and log directories
//   - Periods: reference and evaluation year windows
//   - Matching: similarity blend, candidate floors and selection refinements
//   - Validation: authority and temporal validator confidences
//   - Arbitration: precedence thresholds
//   - LLM: semantic classifier connection
//   - Pipeline: worker pool width and classifier concurrency
//   - Report: output format
//   - Notifications: ntfy run notifications
//   - Logging: log format, level and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Periods       Periods       `toml:"periods"`
	Matching      Matching      `toml:"matching"`
	Validation    Validation    `toml:"validation"`
	Arbitration   Arbitration   `toml:"arbitration"`
	LLM           LLM           `toml:"llm"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Report        Report        `toml:"report"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("saaqreg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the report and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ReportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Fingerprint returns a stable digest of every setting that influences a
// decision. Caches keyed on derived values use it to detect stale entries.
func (c *Config) Fingerprint() string {
	view := struct {
		Paths       Paths
		Periods     Periods
		Matching    Matching
		Validation  Validation
		Arbitration Arbitration
		Model       string
	}{c.Paths, c.Periods, c.Matching, c.Validation, c.Arbitration, c.LLM.Model}
	encoded, err := toml.Marshal(view)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:8])
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the classifier connection settings after fallbacks.
type LLMConfig struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Referer           string
	Title             string
	TimeoutSeconds    int
	RetryAttempts     int
	RequestsPerMinute int
}

// GetLLM returns the classifier connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:          strings.TrimSpace(c.LLM.Provider),
		APIKey:            strings.TrimSpace(c.LLM.APIKey),
		BaseURL:           strings.TrimSpace(c.LLM.BaseURL),
		Model:             strings.TrimSpace(c.LLM.Model),
		Referer:           strings.TrimSpace(c.LLM.Referer),
		Title:             strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds:    c.LLM.TimeoutSeconds,
		RetryAttempts:     c.LLM.RetryAttempts,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}
