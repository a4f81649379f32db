package similarity

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Options controls the blend of the two underlying metrics and the
// separator boost.
type Options struct {
	EditWeight          float64
	TranspositionWeight float64
	BoostScore          float64
	Separators          []string
}

// DefaultOptions returns the production blend: 40% edit similarity, 60%
// Jaro-Winkler, hyphen-insensitive with a 0.99 boost.
func DefaultOptions() Options {
	return Options{
		EditWeight:          0.4,
		TranspositionWeight: 0.6,
		BoostScore:          0.99,
		Separators:          []string{"-"},
	}
}

// Scorer computes similarity scores. The zero value is not usable; build
// one with New.
type Scorer struct {
	editWeight  float64
	transWeight float64
	boost       float64
	separators  []string
}

// New returns a Scorer for opts. Non-positive weights fall back to the
// defaults and are normalized to sum to one.
func New(opts Options) *Scorer {
	defaults := DefaultOptions()
	edit, trans := opts.EditWeight, opts.TranspositionWeight
	if edit < 0 {
		edit = 0
	}
	if trans < 0 {
		trans = 0
	}
	if edit+trans == 0 {
		edit, trans = defaults.EditWeight, defaults.TranspositionWeight
	}
	total := edit + trans
	boost := opts.BoostScore
	if boost <= 0 || boost > 1 {
		boost = defaults.BoostScore
	}
	separators := opts.Separators
	if separators == nil {
		separators = defaults.Separators
	}
	return &Scorer{
		editWeight:  edit / total,
		transWeight: trans / total,
		boost:       boost,
		separators:  append([]string(nil), separators...),
	}
}

var defaultScorer = New(DefaultOptions())

// Score compares a and b with the default options.
func Score(a, b string) float64 {
	return defaultScorer.Score(a, b)
}

// BoostScore is the score assigned to separator-only differences.
func (s *Scorer) BoostScore() float64 {
	return s.boost
}

// Breakdown exposes the intermediate values behind a score.
type Breakdown struct {
	Left        string  `json:"left"`
	Right       string  `json:"right"`
	Edit        float64 `json:"edit"`
	JaroWinkler float64 `json:"jaro_winkler"`
	Boosted     bool    `json:"boosted"`
	Score       float64 `json:"score"`
}

// Score returns a value in [0,1]. Identical identifiers (after
// normalization) score exactly 1 and the result does not depend on argument
// order.
func (s *Scorer) Score(a, b string) float64 {
	return s.Explain(a, b).Score
}

// Explain scores a and b and reports how the score was reached.
func (s *Scorer) Explain(a, b string) Breakdown {
	na, nb := Normalize(a), Normalize(b)
	// Fixed argument order keeps floating point results bit-identical for
	// (a, b) and (b, a).
	if nb < na {
		na, nb = nb, na
	}
	out := Breakdown{Left: na, Right: nb}
	switch {
	case na == nb:
		out.Edit, out.JaroWinkler, out.Score = 1, 1, 1
		return out
	case na == "":
		return out
	}
	maxLen := utf8.RuneCountInString(na)
	if n := utf8.RuneCountInString(nb); n > maxLen {
		maxLen = n
	}
	out.Edit = 1 - float64(matchr.Levenshtein(na, nb))/float64(maxLen)
	out.JaroWinkler = matchr.JaroWinkler(na, nb, false)
	out.Score = clamp(s.editWeight*out.Edit + s.transWeight*out.JaroWinkler)
	if len(s.separators) > 0 && stripSeparators(na, s.separators) == stripSeparators(nb, s.separators) {
		out.Boosted = true
		out.Score = s.boost
	}
	return out
}

func clamp(value float64) float64 {
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
