// Package verdict defines the signals validators and the classifier emit and
// the Decision the arbitrator produces for each noisy pair.
package verdict

import (
	"fmt"
	"strings"

	"saaqreg/internal/pairs"
)

// Stance is a signal's position on regularizing a pair.
type Stance string

const (
	Support Stance = "SUPPORT"
	Prevent Stance = "PREVENT"
	Neutral Stance = "NEUTRAL"
)

// Source names the component that produced a verdict.
type Source string

const (
	SourceAuthority  Source = "authority"
	SourceTemporal   Source = "temporal"
	SourceClassifier Source = "classifier"
)

// Label is the classifier's reading of a pair.
type Label string

const (
	LabelSpellingVariant   Label = "spelling_variant"
	LabelTruncationVariant Label = "truncation_variant"
	LabelNewModel          Label = "new_model"
	LabelUncertain         Label = "uncertain"
)

// ParseLabel maps loose classifier wording onto a Label. Unknown values
// read as uncertain.
func ParseLabel(value string) Label {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "spelling_variant", "spelling", "typo", "misspelling":
		return LabelSpellingVariant
	case "truncation_variant", "truncation", "truncated", "abbreviation":
		return LabelTruncationVariant
	case "new_model", "new", "different_model", "distinct_model":
		return LabelNewModel
	default:
		return LabelUncertain
	}
}

// Stance returns the stance a label implies.
func (l Label) Stance() Stance {
	switch l {
	case LabelSpellingVariant, LabelTruncationVariant:
		return Support
	case LabelNewModel:
		return Prevent
	default:
		return Neutral
	}
}

// Verdict is one signal about a noisy pair and its candidate.
type Verdict struct {
	Source     Source  `json:"source"`
	Stance     Stance  `json:"stance"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`

	// Label and Regularize are only set by the classifier.
	Label      Label `json:"label,omitempty"`
	Regularize *bool `json:"regularize,omitempty"`

	// Degraded marks verdicts produced because a data source or the
	// classifier failed.
	Degraded bool `json:"degraded,omitempty"`
}

// New builds a verdict, clamping confidence into [0,1].
func New(source Source, stance Stance, confidence float64, rationale string) Verdict {
	return Verdict{Source: source, Stance: stance, Confidence: clamp(confidence), Rationale: rationale}
}

// Degrade builds the NEUTRAL/0 verdict used when a source cannot answer.
func Degrade(source Source, err error) Verdict {
	v := New(source, Neutral, 0, fmt.Sprintf("%s unavailable: %v", source, err))
	v.Degraded = true
	return v
}

// Is reports whether v has the given source and stance with at least the
// given confidence.
func (v Verdict) Is(source Source, stance Stance, minConfidence float64) bool {
	return v.Source == source && v.Stance == stance && v.Confidence >= minConfidence
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s %s %.2f: %s", v.Source, v.Stance, v.Confidence, v.Rationale)
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

// Path records how a decision was reached.
type Path string

const (
	// PathNoCandidate: no reference pair cleared the floor.
	PathNoCandidate Path = "no_candidate"
	// PathVetoed: every candidate above the floor failed the numeric check.
	PathVetoed Path = "vetoed"
	// PathFiltered: excluded by the priority category filter.
	PathFiltered Path = "filtered"
	// PathShortcut: score at or above the auto-regularize threshold.
	PathShortcut Path = "shortcut"
	// PathArbitrated: decided by the arbitration rules.
	PathArbitrated Path = "arbitrated"
	// PathFailed: the task failed or timed out and the pair was preserved.
	PathFailed Path = "failed"
)

// Decision is the final outcome for one noisy pair.
type Decision struct {
	Pair             pairs.Pair        `json:"pair"`
	Candidate        *pairs.Candidate  `json:"candidate,omitempty"`
	ShouldRegularize bool              `json:"should_regularize"`
	Rationale        string            `json:"rationale"`
	Rule             string            `json:"rule,omitempty"`
	Path             Path              `json:"path"`
	Verdicts         []Verdict         `json:"verdicts,omitempty"`
	Vetoed           []pairs.Candidate `json:"vetoed,omitempty"`
}

// Preserve builds a decision that keeps the pair as-is.
func Preserve(pair pairs.Pair, candidate *pairs.Candidate, path Path, rationale string) Decision {
	return Decision{Pair: pair, Candidate: candidate, Path: path, Rationale: rationale}
}

// Key returns the identity of the decided pair.
func (d Decision) Key() pairs.Key {
	return d.Pair.Key()
}

// Degraded counts verdicts produced by failing sources.
func (d Decision) Degraded() int {
	n := 0
	for _, v := range d.Verdicts {
		if v.Degraded {
			n++
		}
	}
	return n
}

// Valid checks the decision invariants: regularizing requires a candidate.
func (d Decision) Valid() error {
	if d.ShouldRegularize && d.Candidate == nil {
		return fmt.Errorf("decision for %s regularizes without a candidate", d.Key())
	}
	return nil
}
