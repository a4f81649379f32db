// Package arbitrate turns verdicts into a Decision with a fixed precedence:
// a confident authority PREVENT, then a confident temporal PREVENT, then the
// auto-regularize shortcut, then the classifier. The first rule that fires
// decides and is recorded on the Decision.
package arbitrate

import (
	"context"
	"fmt"
	"log/slog"

	"saaqreg/internal/config"
	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

// Rule names recorded on decisions.
const (
	RuleAuthorityPrevent = "authority_prevent"
	RuleTemporalPrevent  = "temporal_prevent"
	RuleAutoRegularize   = "auto_regularize"
	RuleClassifier       = "classifier"
	RuleNoClassifier     = "no_classifier"
)

// Thresholds are the arbitration cut-offs.
type Thresholds struct {
	AuthorityPrevent float64
	TemporalPrevent  float64
	Classifier       float64
	AutoRegularize   float64
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{AuthorityPrevent: 0.9, TemporalPrevent: 0.8, Classifier: 0.7, AutoRegularize: 0.99}
}

// ThresholdsFromConfig maps the [arbitration] section.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	if cfg == nil {
		return DefaultThresholds()
	}
	return Thresholds{
		AuthorityPrevent: cfg.Arbitration.AuthorityPreventThreshold,
		TemporalPrevent:  cfg.Arbitration.TemporalPreventThreshold,
		Classifier:       cfg.Arbitration.ClassifierThreshold,
		AutoRegularize:   cfg.Arbitration.AutoRegularizeScore,
	}
}

// Arbitrator applies the rules. It is stateless and safe for concurrent use.
type Arbitrator struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// New builds an arbitrator. Non-positive thresholds fall back to defaults.
func New(thresholds Thresholds, logger *slog.Logger) *Arbitrator {
	d := DefaultThresholds()
	if thresholds.AuthorityPrevent <= 0 {
		thresholds.AuthorityPrevent = d.AuthorityPrevent
	}
	if thresholds.TemporalPrevent <= 0 {
		thresholds.TemporalPrevent = d.TemporalPrevent
	}
	if thresholds.Classifier <= 0 {
		thresholds.Classifier = d.Classifier
	}
	if thresholds.AutoRegularize <= 0 {
		thresholds.AutoRegularize = d.AutoRegularize
	}
	return &Arbitrator{thresholds: thresholds, logger: logging.NewComponentLogger(logger, "arbitrator")}
}

// Thresholds returns the cut-offs in effect.
func (a *Arbitrator) Thresholds() Thresholds {
	return a.thresholds
}

// Shortcut reports whether candidate scores high enough to regularize
// without consulting the classifier.
func (a *Arbitrator) Shortcut(candidate pairs.Candidate) bool {
	return candidate.Score >= a.thresholds.AutoRegularize
}

// NeedsClassifier reports whether the validator verdicts leave the decision
// open, so the classifier has to be consulted.
func (a *Arbitrator) NeedsClassifier(candidate pairs.Candidate, verdicts []verdict.Verdict) bool {
	if _, _, fired := a.override(verdicts); fired {
		return false
	}
	return !a.Shortcut(candidate)
}

func (a *Arbitrator) override(verdicts []verdict.Verdict) (string, verdict.Verdict, bool) {
	for _, v := range verdicts {
		if v.Is(verdict.SourceAuthority, verdict.Prevent, a.thresholds.AuthorityPrevent) {
			return RuleAuthorityPrevent, v, true
		}
	}
	for _, v := range verdicts {
		if v.Is(verdict.SourceTemporal, verdict.Prevent, a.thresholds.TemporalPrevent) {
			return RuleTemporalPrevent, v, true
		}
	}
	return "", verdict.Verdict{}, false
}

// Decide applies the rules to the collected verdicts.
func (a *Arbitrator) Decide(ctx context.Context, noisy pairs.Pair, candidate pairs.Candidate, verdicts []verdict.Verdict) verdict.Decision {
	cand := candidate
	d := verdict.Decision{
		Pair:      noisy,
		Candidate: &cand,
		Path:      verdict.PathArbitrated,
		Verdicts:  append([]verdict.Verdict(nil), verdicts...),
	}

	if rule, v, fired := a.override(verdicts); fired {
		d.Rule = rule
		d.Rationale = fmt.Sprintf("%s prevents regularization (%.2f): %s", v.Source, v.Confidence, v.Rationale)
	} else if a.Shortcut(candidate) {
		d.Rule = RuleAutoRegularize
		d.Path = verdict.PathShortcut
		d.ShouldRegularize = true
		d.Rationale = fmt.Sprintf("similarity %.4f at or above %.2f", candidate.Score, a.thresholds.AutoRegularize)
	} else if v, ok := classifierVerdict(verdicts); ok {
		d.Rule = RuleClassifier
		d.ShouldRegularize = a.classifierRegularizes(v)
		if d.ShouldRegularize {
			d.Rationale = fmt.Sprintf("classifier: %s (%.2f): %s", v.Label, v.Confidence, v.Rationale)
		} else {
			d.Rationale = fmt.Sprintf("classifier does not support regularization: %s (%.2f, needs %.2f): %s",
				v.Label, v.Confidence, a.thresholds.Classifier, v.Rationale)
		}
	} else {
		d.Rule = RuleNoClassifier
		d.Rationale = "no classifier verdict; preserved"
	}

	result := "preserve"
	if d.ShouldRegularize {
		result = "regularize"
	}
	logging.WithContext(ctx, a.logger).Debug("arbitration decided",
		logging.Args(append(logging.DecisionAttrs("arbitration", result, d.Rule),
			logging.String("candidate", candidate.Pair.Key().String()),
			logging.Float64("score", candidate.Score),
		)...)...,
	)
	return d
}

func (a *Arbitrator) classifierRegularizes(v verdict.Verdict) bool {
	if v.Label != verdict.LabelSpellingVariant && v.Label != verdict.LabelTruncationVariant {
		return false
	}
	if v.Confidence < a.thresholds.Classifier {
		return false
	}
	return v.Regularize == nil || *v.Regularize
}

func classifierVerdict(verdicts []verdict.Verdict) (verdict.Verdict, bool) {
	for _, v := range verdicts {
		if v.Source == verdict.SourceClassifier {
			return v, true
		}
	}
	return verdict.Verdict{}, false
}
