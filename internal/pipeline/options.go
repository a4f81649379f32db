package pipeline

import (
	"time"

	"saaqreg/internal/arbitrate"
	"saaqreg/internal/candidates"
	"saaqreg/internal/catalog"
	"saaqreg/internal/classifier"
	"saaqreg/internal/config"
	"saaqreg/internal/dataset"
	"saaqreg/internal/pairs"
	"saaqreg/internal/validate"
)

const defaultTaskTimeout = 5 * time.Minute

// Options controls one run.
type Options struct {
	Reference     pairs.YearRange
	Evaluation    pairs.YearRange
	Workers       int
	ProgressEvery int
	TaskTimeout   time.Duration
	// DryRun stops after candidate selection and reports the validation
	// workload instead of running it.
	DryRun bool

	Policy     candidates.Policy
	Authority  validate.AuthorityConfig
	Temporal   validate.TemporalConfig
	Thresholds arbitrate.Thresholds
}

// OptionsFromConfig maps a loaded configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Reference:     pairs.NewYearRange(cfg.Periods.ReferenceStart, cfg.Periods.ReferenceEnd),
		Evaluation:    pairs.NewYearRange(cfg.Periods.EvaluationStart, cfg.Periods.EvaluationEnd),
		Workers:       cfg.Pipeline.Workers,
		ProgressEvery: cfg.Pipeline.ProgressEvery,
		TaskTimeout:   time.Duration(cfg.Pipeline.TaskTimeoutSeconds) * time.Second,
		Policy:        candidates.PolicyFromConfig(cfg),
		Authority: validate.AuthorityConfig{
			Confidence:              cfg.Validation.AuthorityConfidence,
			NoisyOnlyConfidence:     cfg.Validation.AuthorityNoisyOnlyConfidence,
			CandidateOnlyConfidence: cfg.Validation.AuthorityCandidateOnlyConfidence,
		},
		Temporal: validate.TemporalConfig{
			Confidence:      cfg.Validation.TemporalConfidence,
			GraceConfidence: cfg.Validation.TemporalGraceConfidence,
			GraceYears:      cfg.Validation.GraceYears,
		},
		Thresholds: arbitrate.ThresholdsFromConfig(cfg),
	}
}

func (o Options) normalized() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = defaultTaskTimeout
	}
	return o
}

// Deps are the external resources a run needs. Openers are invoked once per
// task so no handle is shared between tasks.
type Deps struct {
	Dataset    dataset.Opener
	Catalog    catalog.Opener
	Classifier classifier.Factory
	Limits     *classifier.Limits
}

// DepsFromConfig wires the production dependencies. The catalog cache is
// keyed by the configuration fingerprint.
func DepsFromConfig(cfg *config.Config) (Deps, error) {
	cache, err := catalog.NewCache(cfg.Validation.CatalogCacheSize, cfg.Fingerprint())
	if err != nil {
		return Deps{}, err
	}
	return Deps{
		Dataset:    dataset.NewOpener(cfg.Paths.Dataset),
		Catalog:    catalog.NewOpener(cfg.Paths.Catalog, cfg.Matching.Separators, cache),
		Classifier: classifier.NewFactory(cfg.GetLLM()),
		Limits:     classifier.NewLimits(cfg.Pipeline.MaxInflightClassifier, cfg.LLM.RequestsPerMinute),
	}, nil
}
