package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePeriods(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return nil
}

// ValidateForRun applies the checks that only matter when the classifier will
// actually be called.
func (c *Config) ValidateForRun() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("llm.api_key is required. Set SAAQREG_LLM_API_KEY or edit %s (create with 'saaqreg config init')", defaultPath)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Dataset) == "" {
		return errors.New("paths.dataset must be set")
	}
	return nil
}

func (c *Config) validatePeriods() error {
	p := c.Periods
	if p.ReferenceStart > p.ReferenceEnd {
		return errors.New("periods.reference_start must not be after periods.reference_end")
	}
	if p.EvaluationStart > p.EvaluationEnd {
		return errors.New("periods.evaluation_start must not be after periods.evaluation_end")
	}
	if p.EvaluationStart <= p.ReferenceEnd && p.ReferenceStart <= p.EvaluationEnd {
		return fmt.Errorf("periods overlap: reference %d-%d and evaluation %d-%d",
			p.ReferenceStart, p.ReferenceEnd, p.EvaluationStart, p.EvaluationEnd)
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.EditWeight < 0 || m.TranspositionWeight < 0 {
		return errors.New("matching weights must be >= 0")
	}
	if m.BoostScore > 1 {
		return errors.New("matching.boost_score must be between 0 and 1")
	}
	if m.NumericVetoRatio >= 1 {
		return errors.New("matching.numeric_veto_ratio must be below 1")
	}
	return nil
}

func (c *Config) validateThresholds() error {
	return ensureUnitInterval(map[string]float64{
		"matching.candidate_floor":                       c.Matching.CandidateFloor,
		"matching.make_threshold":                        c.Matching.MakeThreshold,
		"validation.authority_confidence":                c.Validation.AuthorityConfidence,
		"validation.authority_noisy_only_confidence":     c.Validation.AuthorityNoisyOnlyConfidence,
		"validation.authority_candidate_only_confidence": c.Validation.AuthorityCandidateOnlyConfidence,
		"validation.temporal_confidence":                 c.Validation.TemporalConfidence,
		"validation.temporal_grace_confidence":           c.Validation.TemporalGraceConfidence,
		"arbitration.authority_prevent_threshold":        c.Arbitration.AuthorityPreventThreshold,
		"arbitration.temporal_prevent_threshold":         c.Arbitration.TemporalPreventThreshold,
		"arbitration.classifier_threshold":               c.Arbitration.ClassifierThreshold,
		"arbitration.auto_regularize_score":              c.Arbitration.AutoRegularizeScore,
	})
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openrouter", "openai":
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (expected openrouter or openai)", c.LLM.Provider)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	if c.Pipeline.MaxInflightClassifier <= 0 {
		return errors.New("pipeline.max_inflight_classifier must be positive")
	}
	return nil
}

func (c *Config) validateReport() error {
	switch c.Report.Format {
	case "json", "table", "markdown":
		return nil
	default:
		return fmt.Errorf("report.format: unsupported value %q (expected json, table or markdown)", c.Report.Format)
	}
}

func ensureUnitInterval(values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := values[key]; value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}
