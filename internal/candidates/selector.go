package candidates

import (
	"fmt"
	"slices"
	"strings"

	"saaqreg/internal/pairs"
	"saaqreg/internal/similarity"
	"saaqreg/internal/verdict"
)

// Selection is the selector's answer for one noisy pair.
type Selection struct {
	Pair pairs.Pair
	// Candidate is the top surviving candidate, nil on the fast path.
	Candidate *pairs.Candidate
	// Vetoed lists candidates above the floor rejected by the numeric check,
	// best first.
	Vetoed     []pairs.Candidate
	VetoReason string
	Filtered   bool
	// Considered counts reference pairs scored after make pre-filtering.
	Considered int
}

// FastPath reports whether the pair is decided without validation.
func (s Selection) FastPath() bool {
	return s.Candidate == nil
}

// Decision builds the preserve decision for a fast-path selection.
func (s Selection) Decision(floor float64) verdict.Decision {
	var d verdict.Decision
	switch {
	case s.Filtered:
		d = verdict.Preserve(s.Pair, nil, verdict.PathFiltered,
			fmt.Sprintf("categories %s outside priority categories; treated as new", categoryList(s.Pair.Categories)))
	case len(s.Vetoed) > 0:
		d = verdict.Preserve(s.Pair, nil, verdict.PathVetoed,
			fmt.Sprintf("%d candidate(s) rejected by numeric veto (%s); treated as new", len(s.Vetoed), s.VetoReason))
	default:
		d = verdict.Preserve(s.Pair, nil, verdict.PathNoCandidate,
			fmt.Sprintf("no reference candidate scored at or above %.2f; treated as new", floor))
	}
	d.Vetoed = s.Vetoed
	return d
}

func categoryList(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ",")
}

// Selector proposes reference candidates. It is safe for concurrent use:
// the reference set and policy are read-only after construction.
type Selector struct {
	policy Policy
	scorer *similarity.Scorer
	ref    *pairs.ReferenceSet
}

// NewSelector builds a selector over ref.
func NewSelector(ref *pairs.ReferenceSet, policy Policy) *Selector {
	policy = policy.normalized()
	return &Selector{
		policy: policy,
		scorer: similarity.New(policy.Similarity),
		ref:    ref,
	}
}

// Policy returns the normalized policy in effect.
func (s *Selector) Policy() Policy {
	return s.policy
}

// Scorer exposes the similarity scorer the selector uses.
func (s *Selector) Scorer() *similarity.Scorer {
	return s.scorer
}

// Select picks the candidate for noisy.
func (s *Selector) Select(noisy pairs.Pair) Selection {
	sel := Selection{Pair: noisy}
	if len(s.policy.PriorityCategories) > 0 && !pairs.Intersects(noisy.Categories, s.policy.PriorityCategories) {
		sel.Filtered = true
		return sel
	}

	ranked, considered := s.rank(noisy)
	sel.Considered = considered
	for i := range ranked {
		if diverges, reason := s.policy.Veto.Diverges(noisy.Model, ranked[i].Pair.Model); diverges {
			sel.Vetoed = append(sel.Vetoed, ranked[i])
			if sel.VetoReason == "" {
				sel.VetoReason = reason
			}
			continue
		}
		top := ranked[i]
		sel.Candidate = &top
		break
	}
	return sel
}

// Candidates returns every reference pair scoring at or above the floor,
// best first, before the numeric veto.
func (s *Selector) Candidates(noisy pairs.Pair) []pairs.Candidate {
	ranked, _ := s.rank(noisy)
	return ranked
}

func (s *Selector) rank(noisy pairs.Pair) ([]pairs.Candidate, int) {
	makes := s.matchingMakes(noisy.Make)
	noisyKey := noisy.Key()
	var out []pairs.Candidate
	considered := 0
	for _, makeName := range makes {
		for _, ref := range s.ref.ByMake(makeName) {
			if ref.Key() == noisyKey {
				continue
			}
			if s.policy.RequireSharedCategory && !noisy.SharesCategory(ref) {
				continue
			}
			considered++
			var score float64
			if s.policy.TwoPass {
				score = s.scorer.Score(noisy.Model, ref.Model)
			} else {
				score = s.scorer.Score(noisy.Label(), ref.Label())
			}
			if score < s.policy.CandidateFloor {
				continue
			}
			out = append(out, pairs.Candidate{Pair: ref, Score: score})
		}
	}
	slices.SortFunc(out, func(a, b pairs.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Pair.Key().Compare(b.Pair.Key())
		}
	})
	return out, considered
}

// matchingMakes returns the reference makes similar enough to noisyMake. In
// two-pass mode only the single best make is kept.
func (s *Selector) matchingMakes(noisyMake string) []string {
	var (
		matches   []string
		best      string
		bestScore float64
	)
	for _, refMake := range s.ref.Makes() {
		score := s.scorer.Score(noisyMake, refMake)
		if score < s.policy.MakeThreshold {
			continue
		}
		matches = append(matches, refMake)
		if score > bestScore {
			best, bestScore = refMake, score
		}
	}
	if s.policy.TwoPass {
		if best == "" {
			return nil
		}
		return []string{best}
	}
	return matches
}
