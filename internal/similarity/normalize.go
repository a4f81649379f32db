package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips combining accents, and collapses internal
// whitespace so "Citroën  C4" and "CITROEN C4" compare equal.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	// transform.Chain keeps state, so build one per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, value)
	if err != nil {
		stripped = value
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

func stripSeparators(value string, separators []string) string {
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		value = strings.ReplaceAll(value, sep, "")
	}
	return value
}
