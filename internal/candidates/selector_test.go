package candidates_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"saaqreg/internal/candidates"
	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

func referenceFixture() *pairs.ReferenceSet {
	years := pairs.NewYearRange(2011, 2022)
	return pairs.NewReferenceSet([]pairs.Pair{
		pairs.MustNew("VOLVO", "XC90", []string{"PAU"}, pairs.NewYearRange(2003, 2022), years),
		pairs.MustNew("VOLVO", "S60", []string{"PAU"}, pairs.NewYearRange(2001, 2022), years),
		pairs.MustNew("TOYOTA", "COROLLA", []string{"PAU"}, pairs.NewYearRange(1990, 2022), years),
		pairs.MustNew("BMW", "228", []string{"PAU"}, pairs.NewYearRange(2014, 2022), years),
		pairs.MustNew("BMW", "X5", []string{"PAU"}, pairs.NewYearRange(2000, 2022), years),
		pairs.MustNew("MAZDA", "CX-3", []string{"PAU"}, pairs.NewYearRange(2016, 2022), years),
		pairs.MustNew("MAZDA", "CX-5", []string{"PAU"}, pairs.NewYearRange(2013, 2022), years),
		pairs.MustNew("KIA", "AC", []string{"PAU"}, pairs.NewYearRange(2015, 2022), years),
		pairs.MustNew("KIA", "AD", []string{"PAU"}, pairs.NewYearRange(2015, 2022), years),
	})
}

func noisy(makeName, model string, categories ...string) pairs.Pair {
	if len(categories) == 0 {
		categories = []string{"PAU"}
	}
	return pairs.MustNew(makeName, model, categories, pairs.NewYearRange(2023, 2024), pairs.NewYearRange(2023, 2024))
}

func TestSelectCorrectsMisspelledMake(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	got := sel.Select(noisy("VOLV0", "XC90"))
	require.False(t, got.FastPath())
	require.NotNil(t, got.Candidate)
	require.Equal(t, pairs.NewKey("VOLVO", "XC90"), got.Candidate.Pair.Key())
	require.GreaterOrEqual(t, got.Candidate.Score, 0.85)
	require.Empty(t, got.Vetoed)
}

func TestSelectPrefersSeparatorVariant(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	got := sel.Select(noisy("MAZDA", "CX3"))
	require.NotNil(t, got.Candidate)
	require.Equal(t, "CX-3", got.Candidate.Pair.Model)
	require.InDelta(t, 0.99, got.Candidate.Score, 1e-9)
}

func TestSelectVetoesDivergentNumerals(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	got := sel.Select(noisy("BMW", "328"))
	require.True(t, got.FastPath())
	require.NotEmpty(t, got.Vetoed)
	require.Equal(t, "228", got.Vetoed[0].Pair.Model)
	require.NotEmpty(t, got.VetoReason)

	decision := got.Decision(sel.Policy().CandidateFloor)
	require.Equal(t, verdict.PathVetoed, decision.Path)
	require.False(t, decision.ShouldRegularize)
	require.Nil(t, decision.Candidate)
	require.Equal(t, got.Vetoed, decision.Vetoed)
	require.NoError(t, decision.Valid())
}

func TestSelectWithoutMatchingMakeTakesFastPath(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	got := sel.Select(noisy("ZQXJW", "PLMNB"))
	require.True(t, got.FastPath())
	require.Zero(t, got.Considered)

	decision := got.Decision(0.4)
	require.Equal(t, verdict.PathNoCandidate, decision.Path)
	require.Contains(t, decision.Rationale, "0.40")
}

func TestSelectBreaksTiesByKey(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	ranked := sel.Candidates(noisy("KIA", "AB"))
	require.GreaterOrEqual(t, len(ranked), 2)
	require.Equal(t, ranked[0].Score, ranked[1].Score)
	require.Equal(t, "AC", ranked[0].Pair.Model)
	require.Equal(t, "AD", ranked[1].Pair.Model)

	for i := 0; i < 5; i++ {
		got := sel.Select(noisy("KIA", "AB"))
		require.Equal(t, "AC", got.Candidate.Pair.Model)
	}
}

func TestCandidatesAreSortedAboveFloor(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.DefaultPolicy())

	ranked := sel.Candidates(noisy("VOLV0", "XC90"))
	require.NotEmpty(t, ranked)
	for i, c := range ranked {
		require.GreaterOrEqual(t, c.Score, 0.4)
		require.Equal(t, "VOLVO", c.Pair.Make)
		if i > 0 {
			require.LessOrEqual(t, c.Score, ranked[i-1].Score)
		}
	}
}

func TestPriorityCategoriesFilterNoisyPairs(t *testing.T) {
	policy := candidates.DefaultPolicy()
	policy.PriorityCategories = []string{"cam"}
	sel := candidates.NewSelector(referenceFixture(), policy)

	got := sel.Select(noisy("VOLV0", "XC90", "PAU"))
	require.True(t, got.Filtered)
	require.Equal(t, verdict.PathFiltered, got.Decision(0.4).Path)

	got = sel.Select(noisy("VOLV0", "XC90", "CAM", "PAU"))
	require.False(t, got.Filtered)
}

func TestRequireSharedCategoryDropsDisjointCandidates(t *testing.T) {
	policy := candidates.DefaultPolicy()
	policy.RequireSharedCategory = true
	sel := candidates.NewSelector(referenceFixture(), policy)

	got := sel.Select(noisy("VOLV0", "XC90", "CAM"))
	require.True(t, got.FastPath())
	require.Equal(t, verdict.PathNoCandidate, got.Decision(0.4).Path)
}

func TestTwoPassScoresModelWithinBestMake(t *testing.T) {
	policy := candidates.DefaultPolicy()
	policy.TwoPass = true
	sel := candidates.NewSelector(referenceFixture(), policy)

	got := sel.Select(noisy("VOLV0", "XC90"))
	require.NotNil(t, got.Candidate)
	require.Equal(t, pairs.NewKey("VOLVO", "XC90"), got.Candidate.Pair.Key())
	require.InDelta(t, 1.0, got.Candidate.Score, 1e-9)
}

func TestPolicyNormalizesOutOfRangeValues(t *testing.T) {
	sel := candidates.NewSelector(referenceFixture(), candidates.Policy{CandidateFloor: 3, MakeThreshold: -1})
	policy := sel.Policy()
	require.Equal(t, 0.4, policy.CandidateFloor)
	require.Equal(t, 0.7, policy.MakeThreshold)
	require.Equal(t, 0.15, policy.Veto.Ratio)
}
