package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"saaqreg/internal/catalog"
	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

// AuthorityConfig sets the confidences attached to authority verdicts.
type AuthorityConfig struct {
	// Confidence applies when both pairs are catalogued.
	Confidence float64
	// NoisyOnlyConfidence applies when only the noisy pair is catalogued.
	NoisyOnlyConfidence float64
	// CandidateOnlyConfidence applies when only the candidate is catalogued.
	CandidateOnlyConfidence float64
}

// DefaultAuthorityConfig returns the production confidences.
func DefaultAuthorityConfig() AuthorityConfig {
	return AuthorityConfig{Confidence: 0.95, NoisyOnlyConfidence: 0.90, CandidateOnlyConfidence: 0.3}
}

// Authority checks both pairs against the reference catalog.
type Authority struct {
	lookup catalog.Lookuper
	cfg    AuthorityConfig
	logger *slog.Logger
}

// NewAuthority builds an authority validator over lookup. A nil lookup
// yields degraded verdicts.
func NewAuthority(lookup catalog.Lookuper, cfg AuthorityConfig, logger *slog.Logger) *Authority {
	d := DefaultAuthorityConfig()
	if cfg.Confidence <= 0 {
		cfg.Confidence = d.Confidence
	}
	if cfg.NoisyOnlyConfidence <= 0 {
		cfg.NoisyOnlyConfidence = d.NoisyOnlyConfidence
	}
	if cfg.CandidateOnlyConfidence <= 0 {
		cfg.CandidateOnlyConfidence = d.CandidateOnlyConfidence
	}
	return &Authority{
		lookup: lookup,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "authority"),
	}
}

// Validate implements Validator.
func (a *Authority) Validate(ctx context.Context, noisy, candidate pairs.Pair) verdict.Verdict {
	if a.lookup == nil {
		return a.degrade(ctx, errors.New("no catalog handle"))
	}
	noisyEntry, err := a.lookup.Lookup(ctx, noisy.Key())
	if err != nil {
		return a.degrade(ctx, err)
	}
	candidateEntry, err := a.lookup.Lookup(ctx, candidate.Key())
	if err != nil {
		return a.degrade(ctx, err)
	}

	switch {
	case noisyEntry.Found && candidateEntry.Found:
		// Rows without a category code carry no class evidence either way.
		if len(noisyEntry.Categories) == 0 || len(candidateEntry.Categories) == 0 {
			return verdict.New(verdict.SourceAuthority, verdict.Neutral, 0,
				fmt.Sprintf("both catalogued but category unknown (%s / %s)",
					joinCategories(noisyEntry.Categories), joinCategories(candidateEntry.Categories)))
		}
		if pairs.Intersects(noisyEntry.Categories, candidateEntry.Categories) {
			return verdict.New(verdict.SourceAuthority, verdict.Support, a.cfg.Confidence,
				fmt.Sprintf("both catalogued with shared category (%s / %s)",
					joinCategories(noisyEntry.Categories), joinCategories(candidateEntry.Categories)))
		}
		return verdict.New(verdict.SourceAuthority, verdict.Prevent, a.cfg.Confidence,
			fmt.Sprintf("both catalogued with disjoint categories (%s / %s)",
				joinCategories(noisyEntry.Categories), joinCategories(candidateEntry.Categories)))
	case noisyEntry.Found:
		return verdict.New(verdict.SourceAuthority, verdict.Prevent, a.cfg.NoisyOnlyConfidence,
			fmt.Sprintf("%s is catalogued as %s; candidate is not", noisy.Label(), noisyEntry.Matched))
	case candidateEntry.Found:
		return verdict.New(verdict.SourceAuthority, verdict.Neutral, a.cfg.CandidateOnlyConfidence,
			fmt.Sprintf("only the candidate %s is catalogued", candidate.Label()))
	default:
		return verdict.New(verdict.SourceAuthority, verdict.Neutral, 0, "neither pair is catalogued")
	}
}

func (a *Authority) degrade(ctx context.Context, err error) verdict.Verdict {
	logging.WarnWithContext(logging.WithContext(ctx, a.logger), "catalog lookup failed; authority verdict degraded",
		"authority_degraded",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check paths.catalog and that the catalog database is readable"),
		logging.String(logging.FieldImpact, "authority check treated as neutral for this pair"),
	)
	return verdict.Degrade(verdict.SourceAuthority, err)
}

func joinCategories(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}
