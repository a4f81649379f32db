package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"saaqreg/internal/services/llm"
	"saaqreg/internal/verdict"
)

// defaultConfidence applies when the model gives no usable confidence.
const defaultConfidence = 0.5

// Response is the parsed classifier answer.
type Response struct {
	Label      verdict.Label
	Regularize *bool
	Confidence float64
	Reasoning  string
	// Structured reports whether the answer was valid JSON with a label.
	Structured bool
}

type jsonResponse struct {
	Classification string   `json:"classification"`
	Regularize     *bool    `json:"regularize"`
	Confidence     *float64 `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
}

var (
	confidencePattern = regexp.MustCompile(`(?i)confidence\W{0,4}(\d+(?:\.\d+)?)\s*(%?)`)
	decisionPattern   = regexp.MustCompile(`(?i)(?:^\W*|\b(?:regulari[sz]e|regularization|recommendation|answer)\b\W{0,4})(yes|no|true|false)\b`)
	wordPattern       = regexp.MustCompile(`[a-z'’]+`)

	negations = map[string]struct{}{
		"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {}, "hardly": {},
	}

	labelKeywords = []struct {
		label    verdict.Label
		keywords []string
	}{
		{verdict.LabelSpellingVariant, []string{"spelling_variant", "spelling variant", "misspell", "typo"}},
		{verdict.LabelTruncationVariant, []string{"truncation_variant", "truncation variant", "truncat", "abbreviat"}},
		{verdict.LabelNewModel, []string{"new_model", "new model", "different model", "distinct model"}},
		{verdict.LabelUncertain, []string{"uncertain"}},
	}
)

// ParseResponse reads model output. It never fails: unreadable content is
// an uncertain answer at the default confidence.
func ParseResponse(content string) Response {
	var parsed jsonResponse
	if err := llm.DecodeLLMJSON(content, &parsed); err == nil && strings.TrimSpace(parsed.Classification) != "" {
		out := Response{
			Label:      verdict.ParseLabel(parsed.Classification),
			Regularize: parsed.Regularize,
			Confidence: defaultConfidence,
			Reasoning:  strings.TrimSpace(parsed.Reasoning),
			Structured: true,
		}
		if parsed.Confidence != nil {
			out.Confidence = normalizeConfidence(*parsed.Confidence, false)
		}
		return out
	}

	// Free text only regularizes on an explicit yes.
	no := false
	out := Response{
		Label:      keywordLabel(content),
		Regularize: &no,
		Confidence: defaultConfidence,
		Reasoning:  strings.TrimSpace(content),
	}
	if decision, ok := explicitDecision(content); ok {
		out.Regularize = &decision
	}
	if conf, ok := scanConfidence(content); ok {
		out.Confidence = conf
	}
	return out
}

// keywordLabel reads a label from free text. Any negated keyword, or
// keywords that disagree on whether to regularize, make the answer
// uncertain.
func keywordLabel(content string) verdict.Label {
	lower := strings.ToLower(content)
	best, bestAt := verdict.LabelUncertain, -1
	for _, entry := range labelKeywords {
		for _, keyword := range entry.keywords {
			for from := 0; from < len(lower); {
				at := strings.Index(lower[from:], keyword)
				if at < 0 {
					break
				}
				at += from
				if negated(lower[:at]) {
					return verdict.LabelUncertain
				}
				if bestAt >= 0 && best.Stance() != entry.label.Stance() {
					return verdict.LabelUncertain
				}
				if bestAt < 0 || at < bestAt {
					best, bestAt = entry.label, at
				}
				from = at + len(keyword)
			}
		}
	}
	return best
}

// negated reports whether the clause ending at a keyword negates it within
// its last few words ("not a typo", "isn't really a new model").
func negated(prefix string) bool {
	if cut := strings.LastIndexAny(prefix, ".;:,!?\n"); cut >= 0 {
		prefix = prefix[cut+1:]
	}
	words := wordPattern.FindAllString(prefix, -1)
	if len(words) > 4 {
		words = words[len(words)-4:]
	}
	for _, w := range words {
		if _, ok := negations[w]; ok || strings.HasSuffix(w, "n't") || strings.HasSuffix(w, "n’t") {
			return true
		}
	}
	return false
}

// explicitDecision finds a yes/no regularization answer: a leading yes or
// no, or one following "regularize", "recommendation" or "answer".
func explicitDecision(content string) (bool, bool) {
	match := decisionPattern.FindStringSubmatch(strings.TrimSpace(content))
	if match == nil {
		return false, false
	}
	switch strings.ToLower(match[1]) {
	case "yes", "true":
		return true, true
	default:
		return false, true
	}
}

func scanConfidence(content string) (float64, bool) {
	match := confidencePattern.FindStringSubmatch(content)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return normalizeConfidence(value, match[2] == "%"), true
}

// normalizeConfidence accepts 0-1 fractions and 0-100 percentages.
func normalizeConfidence(value float64, percent bool) float64 {
	if percent || value > 1 {
		value /= 100
	}
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
