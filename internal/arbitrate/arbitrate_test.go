package arbitrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"saaqreg/internal/arbitrate"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

func fixture(score float64) (pairs.Pair, pairs.Candidate) {
	noisy := pairs.MustNew("BMW", "X4", []string{"PAU"}, pairs.NewYearRange(2019, 2024), pairs.NewYearRange(2023, 2024))
	ref := pairs.MustNew("BMW", "X3", []string{"PAU"}, pairs.NewYearRange(2004, 2022), pairs.NewYearRange(2011, 2022))
	return noisy, pairs.Candidate{Pair: ref, Score: score}
}

func classifierVerdict(label verdict.Label, confidence float64) verdict.Verdict {
	v := verdict.New(verdict.SourceClassifier, label.Stance(), confidence, "model says so")
	v.Label = label
	return v
}

func boolPtr(v bool) *bool { return &v }

func TestAuthorityPreventOverridesClassifierSupport(t *testing.T) {
	noisy, candidate := fixture(0.9)
	a := arbitrate.New(arbitrate.DefaultThresholds(), nil)
	verdicts := []verdict.Verdict{
		verdict.New(verdict.SourceAuthority, verdict.Prevent, 0.95, "both catalogued with disjoint categories"),
		verdict.New(verdict.SourceTemporal, verdict.Support, 0.85, "overlap"),
		classifierVerdict(verdict.LabelSpellingVariant, 0.99),
	}

	d := a.Decide(context.Background(), noisy, candidate, verdicts)
	require.False(t, d.ShouldRegularize)
	require.Equal(t, arbitrate.RuleAuthorityPrevent, d.Rule)
	require.Equal(t, verdict.PathArbitrated, d.Path)
	require.NotNil(t, d.Candidate)
	require.Len(t, d.Verdicts, 3)
	require.NoError(t, d.Valid())
}

func TestTemporalPreventBeatsClassifier(t *testing.T) {
	noisy, candidate := fixture(0.9)
	a := arbitrate.New(arbitrate.DefaultThresholds(), nil)
	d := a.Decide(context.Background(), noisy, candidate, []verdict.Verdict{
		verdict.New(verdict.SourceAuthority, verdict.Neutral, 0, "neither catalogued"),
		verdict.New(verdict.SourceTemporal, verdict.Prevent, 0.85, "5 years apart"),
		classifierVerdict(verdict.LabelSpellingVariant, 0.95),
	})
	require.False(t, d.ShouldRegularize)
	require.Equal(t, arbitrate.RuleTemporalPrevent, d.Rule)
}

func TestWeakPreventFallsThroughToClassifier(t *testing.T) {
	noisy, candidate := fixture(0.9)
	a := arbitrate.New(arbitrate.DefaultThresholds(), nil)
	d := a.Decide(context.Background(), noisy, candidate, []verdict.Verdict{
		verdict.New(verdict.SourceAuthority, verdict.Prevent, 0.85, "weak"),
		verdict.New(verdict.SourceTemporal, verdict.Prevent, 0.7, "weak"),
		classifierVerdict(verdict.LabelTruncationVariant, 0.8),
	})
	require.True(t, d.ShouldRegularize)
	require.Equal(t, arbitrate.RuleClassifier, d.Rule)
}

func TestClassifierRules(t *testing.T) {
	tests := []struct {
		name       string
		verdict    verdict.Verdict
		regularize bool
	}{
		{"spelling above threshold", classifierVerdict(verdict.LabelSpellingVariant, 0.7), true},
		{"spelling below threshold", classifierVerdict(verdict.LabelSpellingVariant, 0.69), false},
		{"new model", classifierVerdict(verdict.LabelNewModel, 0.95), false},
		{"uncertain", classifierVerdict(verdict.LabelUncertain, 0.5), false},
		{"explicit no", func() verdict.Verdict {
			v := classifierVerdict(verdict.LabelSpellingVariant, 0.9)
			v.Regularize = boolPtr(false)
			return v
		}(), false},
	}
	a := arbitrate.New(arbitrate.Thresholds{}, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			noisy, candidate := fixture(0.8)
			d := a.Decide(context.Background(), noisy, candidate, []verdict.Verdict{tc.verdict})
			require.Equal(t, tc.regularize, d.ShouldRegularize)
			require.Equal(t, arbitrate.RuleClassifier, d.Rule)
		})
	}
}

func TestShortcutSkipsClassifierButNotValidators(t *testing.T) {
	noisy, candidate := fixture(0.99)
	a := arbitrate.New(arbitrate.DefaultThresholds(), nil)

	neutral := []verdict.Verdict{
		verdict.New(verdict.SourceAuthority, verdict.Neutral, 0, "neither catalogued"),
		verdict.New(verdict.SourceTemporal, verdict.Support, 0.85, "overlap"),
	}
	require.False(t, a.NeedsClassifier(candidate, neutral))
	d := a.Decide(context.Background(), noisy, candidate, neutral)
	require.True(t, d.ShouldRegularize)
	require.Equal(t, verdict.PathShortcut, d.Path)
	require.Equal(t, arbitrate.RuleAutoRegularize, d.Rule)

	preventing := []verdict.Verdict{verdict.New(verdict.SourceAuthority, verdict.Prevent, 0.95, "disjoint")}
	d = a.Decide(context.Background(), noisy, candidate, preventing)
	require.False(t, d.ShouldRegularize)
	require.Equal(t, arbitrate.RuleAuthorityPrevent, d.Rule)
}

func TestNeedsClassifier(t *testing.T) {
	_, candidate := fixture(0.8)
	a := arbitrate.New(arbitrate.DefaultThresholds(), nil)
	require.True(t, a.NeedsClassifier(candidate, nil))
	require.False(t, a.NeedsClassifier(candidate, []verdict.Verdict{
		verdict.New(verdict.SourceTemporal, verdict.Prevent, 0.85, "gap"),
	}))
}

func TestMissingClassifierVerdictPreserves(t *testing.T) {
	noisy, candidate := fixture(0.8)
	d := arbitrate.New(arbitrate.DefaultThresholds(), nil).Decide(context.Background(), noisy, candidate, nil)
	require.False(t, d.ShouldRegularize)
	require.Equal(t, arbitrate.RuleNoClassifier, d.Rule)
}
