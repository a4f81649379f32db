package similarity

import (
	"fmt"
	"strconv"
	"unicode"
)

// maxNumeralDigits bounds parsed numerals; longer runs are compared on
// their leading digits.
const maxNumeralDigits = 9

// Veto rejects pairs whose embedded numerals diverge. A pair diverges when
// both identifiers carry a numeral, the numerals differ by more than Ratio
// of the larger one, and the absolute difference is at least MinGap.
type Veto struct {
	Ratio  float64
	MinGap int
}

// DefaultVeto returns the production thresholds: 15% relative divergence
// with an absolute gap of at least 2.
func DefaultVeto() Veto {
	return Veto{Ratio: 0.15, MinGap: 2}
}

// Diverges reports whether a and b name different numbered models. The
// returned reason is empty when they do not diverge.
func (v Veto) Diverges(a, b string) (bool, string) {
	na, okA := LeadingNumeral(a)
	nb, okB := LeadingNumeral(b)
	if !okA || !okB || na == nb {
		return false, ""
	}
	hi, lo := na, nb
	if lo > hi {
		hi, lo = lo, hi
	}
	gap := hi - lo
	if gap < v.MinGap {
		return false, ""
	}
	ratio := float64(gap) / float64(hi)
	if ratio <= v.Ratio {
		return false, ""
	}
	return true, fmt.Sprintf("numerals %d and %d diverge by %.0f%% (limit %.0f%%)", na, nb, ratio*100, v.Ratio*100)
}

// LeadingNumeral returns the first run of ASCII digits in value.
func LeadingNumeral(value string) (int, bool) {
	start := -1
	end := -1
	for i, r := range value {
		isDigit := r < unicode.MaxASCII && unicode.IsDigit(r)
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	if end < 0 {
		end = len(value)
	}
	digits := value[start:end]
	if len(digits) > maxNumeralDigits {
		digits = digits[:maxNumeralDigits]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
