package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"saaqreg/internal/config"
	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/services/llm"
	"saaqreg/internal/services/openai"
	"saaqreg/internal/verdict"
)

// Completer sends one system/user exchange and returns the model content.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker is implemented by completers that can verify credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// CompleteJSON implements Completer.
func (f CompleterFunc) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// Factory builds a fresh Completer for one task.
type Factory func() Completer

// NewFactory returns a factory for the configured provider.
func NewFactory(cfg config.LLMConfig) Factory {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return func() Completer {
			return openai.NewClient(openai.Config{
				APIKey:         cfg.APIKey,
				BaseURL:        cfg.BaseURL,
				Model:          cfg.Model,
				TimeoutSeconds: cfg.TimeoutSeconds,
				RetryAttempts:  cfg.RetryAttempts,
			})
		}
	default:
		return func() Completer {
			return llm.NewClient(llm.Config{
				APIKey:         cfg.APIKey,
				BaseURL:        cfg.BaseURL,
				Model:          cfg.Model,
				Referer:        cfg.Referer,
				Title:          cfg.Title,
				TimeoutSeconds: cfg.TimeoutSeconds,
				RetryAttempts:  cfg.RetryAttempts,
			})
		}
	}
}

// Classifier produces the semantic verdict for one pair.
type Classifier struct {
	completer Completer
	limits    *Limits
	logger    *slog.Logger
}

// New wraps completer. limits may be nil.
func New(completer Completer, limits *Limits, logger *slog.Logger) *Classifier {
	return &Classifier{
		completer: completer,
		limits:    limits,
		logger:    logging.NewComponentLogger(logger, "classifier"),
	}
}

// Classify asks the model about noisy and candidate. It always returns a
// verdict.
func (c *Classifier) Classify(ctx context.Context, noisy pairs.Pair, candidate pairs.Candidate) verdict.Verdict {
	logger := logging.WithContext(ctx, c.logger)
	if c.completer == nil {
		return c.failed(logger, errors.New("no classifier configured"))
	}

	release, err := c.limits.Acquire(ctx)
	if err != nil {
		return c.failed(logger, fmt.Errorf("wait for classifier slot: %w", err))
	}
	content, err := c.completer.CompleteJSON(ctx, SystemPrompt, UserPrompt(noisy, candidate))
	release()
	if err != nil {
		return c.failed(logger, err)
	}

	resp := ParseResponse(content)
	if !resp.Structured {
		logging.WarnWithContext(logger, "classifier answered without structured JSON",
			"classifier_unstructured",
			logging.String("label", string(resp.Label)),
			logging.Float64("confidence", resp.Confidence),
			logging.String(logging.FieldErrorHint, "check the model follows JSON mode"),
			logging.String(logging.FieldImpact, "verdict recovered from free text"),
		)
	}
	rationale := resp.Reasoning
	if rationale == "" {
		rationale = "no reasoning given"
	}
	v := verdict.New(verdict.SourceClassifier, resp.Label.Stance(), resp.Confidence, rationale)
	v.Label = resp.Label
	v.Regularize = resp.Regularize
	logger.Debug("classifier verdict",
		logging.String("label", string(v.Label)),
		logging.Float64("confidence", v.Confidence),
	)
	return v
}

func (c *Classifier) failed(logger *slog.Logger, err error) verdict.Verdict {
	logging.WarnWithContext(logger, "classifier call failed; treating pair as uncertain",
		"classifier_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check llm api key, model and connectivity"),
		logging.String(logging.FieldImpact, "pair preserved unless other signals decide"),
	)
	v := verdict.New(verdict.SourceClassifier, verdict.Neutral, defaultConfidence,
		fmt.Sprintf("classifier unavailable: %v", err))
	v.Label = verdict.LabelUncertain
	v.Degraded = true
	return v
}
