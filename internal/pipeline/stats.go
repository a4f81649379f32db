package pipeline

import (
	"time"

	"saaqreg/internal/verdict"
)

// Stats summarizes a run.
type Stats struct {
	ReferencePairs  int `json:"reference_pairs"`
	EvaluationPairs int `json:"evaluation_pairs"`
	NoisyPairs      int `json:"noisy_pairs"`
	// Malformed counts dataset groups excluded for an empty make or model.
	Malformed int `json:"malformed"`

	NoCandidate int `json:"no_candidate"`
	Vetoed      int `json:"vetoed"`
	Filtered    int `json:"filtered"`
	Shortcut    int `json:"shortcut"`
	Arbitrated  int `json:"arbitrated"`
	Failed      int `json:"failed"`

	Regularized int `json:"regularized"`
	Preserved   int `json:"preserved"`
	// DegradedVerdicts counts verdicts produced by a failing source.
	DegradedVerdicts int `json:"degraded_verdicts"`
	ValidationTasks  int `json:"validation_tasks"`

	Elapsed time.Duration `json:"-"`
}

// FastPath is the number of pairs decided without validation.
func (s Stats) FastPath() int {
	return s.NoCandidate + s.Vetoed + s.Filtered
}

func (s *Stats) count(decisions []verdict.Decision) {
	for _, d := range decisions {
		switch d.Path {
		case verdict.PathNoCandidate:
			s.NoCandidate++
		case verdict.PathVetoed:
			s.Vetoed++
		case verdict.PathFiltered:
			s.Filtered++
		case verdict.PathShortcut:
			s.Shortcut++
		case verdict.PathArbitrated:
			s.Arbitrated++
		case verdict.PathFailed:
			s.Failed++
		}
		if d.ShouldRegularize {
			s.Regularized++
		} else {
			s.Preserved++
		}
		s.DegradedVerdicts += d.Degraded()
	}
}
