package candidates

import (
	"saaqreg/internal/config"
	"saaqreg/internal/pairs"
	"saaqreg/internal/similarity"
)

// Policy centralizes candidate thresholds and refinement switches.
type Policy struct {
	CandidateFloor        float64
	MakeThreshold         float64
	TwoPass               bool
	RequireSharedCategory bool
	PriorityCategories    []string
	Similarity            similarity.Options
	Veto                  similarity.Veto
}

// DefaultPolicy returns the production thresholds with every refinement off.
func DefaultPolicy() Policy {
	return Policy{
		CandidateFloor: 0.4,
		MakeThreshold:  0.7,
		Similarity:     similarity.DefaultOptions(),
		Veto:           similarity.DefaultVeto(),
	}
}

// PolicyFromConfig maps the [matching] section onto a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		return DefaultPolicy()
	}
	m := cfg.Matching
	return Policy{
		CandidateFloor:        m.CandidateFloor,
		MakeThreshold:         m.MakeThreshold,
		TwoPass:               m.TwoPass,
		RequireSharedCategory: m.RequireSharedCategory,
		PriorityCategories:    m.PriorityCategories,
		Similarity: similarity.Options{
			EditWeight:          m.EditWeight,
			TranspositionWeight: m.TranspositionWeight,
			BoostScore:          m.BoostScore,
			Separators:          m.Separators,
		},
		Veto: similarity.Veto{Ratio: m.NumericVetoRatio, MinGap: m.NumericVetoMinGap},
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.CandidateFloor <= 0 || p.CandidateFloor > 1 {
		p.CandidateFloor = d.CandidateFloor
	}
	if p.MakeThreshold <= 0 || p.MakeThreshold > 1 {
		p.MakeThreshold = d.MakeThreshold
	}
	if p.Veto.Ratio <= 0 || p.Veto.Ratio >= 1 {
		p.Veto.Ratio = d.Veto.Ratio
	}
	if p.Veto.MinGap < 0 {
		p.Veto.MinGap = 0
	}
	p.PriorityCategories = pairs.NormalizeCategories(p.PriorityCategories)

	return p
}
