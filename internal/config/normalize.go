package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeValidation()
	c.normalizeArbitration()
	c.normalizeLLM()
	c.normalizePipeline()
	c.normalizeReport()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Dataset, err = expandPath(strings.TrimSpace(c.Paths.Dataset)); err != nil {
		return fmt.Errorf("paths.dataset: %w", err)
	}
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	m := &c.Matching
	if m.CandidateFloor <= 0 {
		m.CandidateFloor = defaultCandidateFloor
	}
	if m.MakeThreshold <= 0 {
		m.MakeThreshold = defaultMakeThreshold
	}
	if m.EditWeight <= 0 && m.TranspositionWeight <= 0 {
		m.EditWeight = defaultEditWeight
		m.TranspositionWeight = defaultTranspositionWeight
	}
	if m.BoostScore <= 0 {
		m.BoostScore = defaultBoostScore
	}
	if m.NumericVetoRatio <= 0 {
		m.NumericVetoRatio = defaultNumericVetoRatio
	}
	if m.NumericVetoMinGap < 0 {
		m.NumericVetoMinGap = 0
	}
	m.Separators = dedupeStrings(m.Separators, false)
	if len(m.Separators) == 0 {
		m.Separators = []string{defaultSeparator}
	}
	m.PriorityCategories = dedupeStrings(m.PriorityCategories, true)
}

func (c *Config) normalizeValidation() {
	v := &c.Validation
	if v.AuthorityConfidence <= 0 {
		v.AuthorityConfidence = defaultAuthorityConfidence
	}
	if v.AuthorityNoisyOnlyConfidence <= 0 {
		v.AuthorityNoisyOnlyConfidence = defaultAuthorityNoisyOnly
	}
	if v.AuthorityCandidateOnlyConfidence <= 0 {
		v.AuthorityCandidateOnlyConfidence = defaultAuthorityCandidate
	}
	if v.TemporalConfidence <= 0 {
		v.TemporalConfidence = defaultTemporalConfidence
	}
	if v.TemporalGraceConfidence <= 0 {
		v.TemporalGraceConfidence = defaultTemporalGrace
	}
	if v.GraceYears < 0 {
		v.GraceYears = 0
	}
	if v.CatalogCacheSize < 0 {
		v.CatalogCacheSize = 0
	}
}

func (c *Config) normalizeArbitration() {
	a := &c.Arbitration
	if a.AuthorityPreventThreshold <= 0 {
		a.AuthorityPreventThreshold = defaultAuthorityThreshold
	}
	if a.TemporalPreventThreshold <= 0 {
		a.TemporalPreventThreshold = defaultTemporalThreshold
	}
	if a.ClassifierThreshold <= 0 {
		a.ClassifierThreshold = defaultClassifierThreshold
	}
	if a.AutoRegularizeScore <= 0 {
		a.AutoRegularizeScore = defaultAutoRegularizeScore
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	switch c.LLM.Provider {
	case "openai":
		// The OpenRouter defaults only make sense for the OpenRouter client.
		if c.LLM.BaseURL == defaultLLMBaseURL {
			c.LLM.BaseURL = ""
		}
		if c.LLM.Model == "" || c.LLM.Model == defaultLLMModel {
			c.LLM.Model = defaultOpenAIModel
		}
	default:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultLLMBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultLLMModel
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.RequestsPerMinute < 0 {
		c.LLM.RequestsPerMinute = 0
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		envKeys := []string{"SAAQREG_LLM_API_KEY", "OPENROUTER_API_KEY"}
		if c.LLM.Provider == "openai" {
			envKeys = []string{"SAAQREG_LLM_API_KEY", "OPENAI_API_KEY"}
		}
		for _, key := range envKeys {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizePipeline() {
	p := &c.Pipeline
	if p.Workers <= 0 {
		p.Workers = defaultWorkers
	}
	if p.MaxInflightClassifier <= 0 {
		p.MaxInflightClassifier = defaultMaxInflightClassifier
	}
	if p.MaxInflightClassifier > p.Workers {
		p.MaxInflightClassifier = p.Workers
	}
	if p.ProgressEvery <= 0 {
		p.ProgressEvery = defaultProgressEvery
	}
	if p.TaskTimeoutSeconds <= 0 {
		p.TaskTimeoutSeconds = defaultTaskTimeoutSeconds
	}
}

func (c *Config) normalizeReport() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	switch c.Report.Format {
	case "":
		c.Report.Format = defaultReportFormat
	case "md":
		c.Report.Format = "markdown"
	case "text":
		c.Report.Format = "table"
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func dedupeStrings(values []string, upper bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if upper {
			normalized = strings.ToUpper(normalized)
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
