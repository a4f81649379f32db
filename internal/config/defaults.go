package config

const (
	defaultConfigPath            = "~/.config/saaqreg/config.toml"
	defaultDatasetPath           = "~/.local/share/saaqreg/dataset.db"
	defaultCatalogPath           = "~/.local/share/saaqreg/catalog.db"
	defaultReportDir             = "~/.local/share/saaqreg/reports"
	defaultLogDir                = "~/.local/share/saaqreg/logs"
	defaultReferenceStart        = 2011
	defaultReferenceEnd          = 2022
	defaultEvaluationStart       = 2023
	defaultEvaluationEnd         = 2024
	defaultCandidateFloor        = 0.4
	defaultMakeThreshold         = 0.7
	defaultEditWeight            = 0.4
	defaultTranspositionWeight   = 0.6
	defaultBoostScore            = 0.99
	defaultNumericVetoRatio      = 0.15
	defaultNumericVetoMinGap     = 2
	defaultAuthorityConfidence   = 0.95
	defaultAuthorityNoisyOnly    = 0.90
	defaultAuthorityCandidate    = 0.3
	defaultTemporalConfidence    = 0.85
	defaultTemporalGrace         = 0.5
	defaultGraceYears            = 2
	defaultCatalogCacheSize      = 4096
	defaultAuthorityThreshold    = 0.9
	defaultTemporalThreshold     = 0.8
	defaultClassifierThreshold   = 0.7
	defaultAutoRegularizeScore   = 0.99
	defaultLLMProvider           = "openrouter"
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-3-flash-preview"
	defaultOpenAIModel           = "gpt-4o-mini"
	defaultLLMReferer            = "https://github.com/OpenMobilityData/SAAQAnalyzer"
	defaultLLMTitle              = "SAAQ make/model regularization"
	defaultLLMTimeoutSeconds     = 60
	defaultLLMRetryAttempts      = 5
	defaultWorkers               = 8
	defaultMaxInflightClassifier = 4
	defaultProgressEvery         = 10
	defaultTaskTimeoutSeconds    = 300
	defaultReportFormat          = "json"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultSeparator             = "-"
	defaultNtfyTimeoutSeconds    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Dataset:   defaultDatasetPath,
			Catalog:   defaultCatalogPath,
			ReportDir: defaultReportDir,
			LogDir:    defaultLogDir,
		},
		Periods: Periods{
			ReferenceStart:  defaultReferenceStart,
			ReferenceEnd:    defaultReferenceEnd,
			EvaluationStart: defaultEvaluationStart,
			EvaluationEnd:   defaultEvaluationEnd,
		},
		Matching: Matching{
			CandidateFloor:      defaultCandidateFloor,
			MakeThreshold:       defaultMakeThreshold,
			EditWeight:          defaultEditWeight,
			TranspositionWeight: defaultTranspositionWeight,
			BoostScore:          defaultBoostScore,
			Separators:          []string{defaultSeparator},
			NumericVetoRatio:    defaultNumericVetoRatio,
			NumericVetoMinGap:   defaultNumericVetoMinGap,
		},
		Validation: Validation{
			AuthorityConfidence:              defaultAuthorityConfidence,
			AuthorityNoisyOnlyConfidence:     defaultAuthorityNoisyOnly,
			AuthorityCandidateOnlyConfidence: defaultAuthorityCandidate,
			TemporalConfidence:               defaultTemporalConfidence,
			TemporalGraceConfidence:          defaultTemporalGrace,
			GraceYears:                       defaultGraceYears,
			CatalogCacheSize:                 defaultCatalogCacheSize,
		},
		Arbitration: Arbitration{
			AuthorityPreventThreshold: defaultAuthorityThreshold,
			TemporalPreventThreshold:  defaultTemporalThreshold,
			ClassifierThreshold:       defaultClassifierThreshold,
			AutoRegularizeScore:       defaultAutoRegularizeScore,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Pipeline: Pipeline{
			Workers:               defaultWorkers,
			MaxInflightClassifier: defaultMaxInflightClassifier,
			ProgressEvery:         defaultProgressEvery,
			TaskTimeoutSeconds:    defaultTaskTimeoutSeconds,
		},
		Report: Report{
			Format:           defaultReportFormat,
			IncludePreserved: true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
