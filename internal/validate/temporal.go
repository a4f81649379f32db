package validate

import (
	"context"
	"fmt"
	"log/slog"

	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

// SpanSource reports the full registration-year span of a pair.
// dataset.Spans satisfies it.
type SpanSource interface {
	Span(ctx context.Context, key pairs.Key) (pairs.YearRange, error)
}

// TemporalConfig sets the temporal verdict confidences and grace window.
type TemporalConfig struct {
	Confidence      float64
	GraceConfidence float64
	GraceYears      int
}

// DefaultTemporalConfig returns the production settings.
func DefaultTemporalConfig() TemporalConfig {
	return TemporalConfig{Confidence: 0.85, GraceConfidence: 0.5, GraceYears: 2}
}

// Temporal compares registration periods. Overlap supports a correction. A
// noisy pair first seen shortly after the candidate disappears is ambiguous.
// Any other gap argues the noisy pair is a different model.
type Temporal struct {
	spans  SpanSource
	cfg    TemporalConfig
	logger *slog.Logger
}

// NewTemporal builds a temporal validator. With a nil spans source each
// pair's own snapshot period is used.
func NewTemporal(spans SpanSource, cfg TemporalConfig, logger *slog.Logger) *Temporal {
	d := DefaultTemporalConfig()
	if cfg.Confidence <= 0 {
		cfg.Confidence = d.Confidence
	}
	if cfg.GraceConfidence <= 0 {
		cfg.GraceConfidence = d.GraceConfidence
	}
	if cfg.GraceYears < 0 {
		cfg.GraceYears = 0
	}
	return &Temporal{
		spans:  spans,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "temporal"),
	}
}

// Validate implements Validator.
func (t *Temporal) Validate(ctx context.Context, noisy, candidate pairs.Pair) verdict.Verdict {
	noisySpan, err := t.span(ctx, noisy)
	if err != nil {
		return t.degrade(ctx, err)
	}
	candidateSpan, err := t.span(ctx, candidate)
	if err != nil {
		return t.degrade(ctx, err)
	}
	if !noisySpan.Known() || !candidateSpan.Known() {
		return verdict.New(verdict.SourceTemporal, verdict.Neutral, 0,
			fmt.Sprintf("registration period unknown (%s / %s)", noisySpan, candidateSpan))
	}

	if noisySpan.Overlaps(candidateSpan) {
		return verdict.New(verdict.SourceTemporal, verdict.Support, t.cfg.Confidence,
			fmt.Sprintf("registration periods overlap (%s / %s)", noisySpan, candidateSpan))
	}
	gap := noisySpan.Gap(candidateSpan)
	if noisySpan.Start > candidateSpan.End && gap <= t.cfg.GraceYears {
		return verdict.New(verdict.SourceTemporal, verdict.Neutral, t.cfg.GraceConfidence,
			fmt.Sprintf("registration periods %d year(s) apart, within %d-year grace (%s / %s)",
				gap, t.cfg.GraceYears, noisySpan, candidateSpan))
	}
	if noisySpan.End < candidateSpan.Start {
		return verdict.New(verdict.SourceTemporal, verdict.Prevent, t.cfg.Confidence,
			fmt.Sprintf("noisy pair registered %d year(s) before the candidate (%s / %s)", gap, noisySpan, candidateSpan))
	}
	return verdict.New(verdict.SourceTemporal, verdict.Prevent, t.cfg.Confidence,
		fmt.Sprintf("registration periods %d years apart (%s / %s)", gap, noisySpan, candidateSpan))
}

func (t *Temporal) span(ctx context.Context, p pairs.Pair) (pairs.YearRange, error) {
	if t.spans == nil {
		return p.Period, nil
	}
	span, err := t.spans.Span(ctx, p.Key())
	if err != nil {
		return pairs.YearRange{}, err
	}
	if !span.Known() {
		return p.Period, nil
	}
	return span, nil
}

func (t *Temporal) degrade(ctx context.Context, err error) verdict.Verdict {
	logging.WarnWithContext(logging.WithContext(ctx, t.logger), "period lookup failed; temporal verdict degraded",
		"temporal_degraded",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check paths.dataset and that the dataset database is readable"),
		logging.String(logging.FieldImpact, "temporal check treated as neutral for this pair"),
	)
	return verdict.Degrade(verdict.SourceTemporal, err)
}
