package classifier

import (
	"encoding/json"

	"saaqreg/internal/pairs"
)

// SystemPrompt instructs the model. Keep the label names in sync with
// verdict.ParseLabel.
const SystemPrompt = `You review vehicle registration records. Each record names a vehicle by make and model, typed by hand, so the same vehicle is often spelled several ways.

You receive a "noisy" make/model pair that only appears in recent records and a "candidate" pair from the trusted reference years. Decide which statement is true:

- "spelling_variant": the noisy pair is the candidate with a typo, a swapped or missing character, a digit instead of a letter, or different spacing or punctuation.
- "truncation_variant": the noisy pair is the candidate cut short or abbreviated.
- "new_model": the noisy pair is a real, different vehicle (for example a new model launched after the reference years, or a different trim number such as 328 versus 228).
- "uncertain": the information is not enough to decide.

Registration years, model years and vehicle categories are given as evidence. A model that is only registered long after the candidate disappeared is more likely new.

You must respond ONLY with a JSON object like: {"classification": "spelling_variant", "regularize": true, "confidence": 0.92, "reasoning": "short explanation"}`

type promptPair struct {
	Make              string   `json:"make"`
	Model             string   `json:"model"`
	Categories        []string `json:"categories,omitempty"`
	ModelYears        string   `json:"model_years"`
	RegistrationYears string   `json:"registration_years"`
	Records           int      `json:"records,omitempty"`
}

type promptPayload struct {
	Noisy      promptPair `json:"noisy"`
	Candidate  promptPair `json:"candidate"`
	Similarity float64    `json:"similarity"`
}

func toPromptPair(p pairs.Pair) promptPair {
	return promptPair{
		Make:              p.Make,
		Model:             p.Model,
		Categories:        p.Categories,
		ModelYears:        p.ModelYears.String(),
		RegistrationYears: p.Period.String(),
		Records:           p.Records,
	}
}

// UserPrompt renders the pair description sent with SystemPrompt.
func UserPrompt(noisy pairs.Pair, candidate pairs.Candidate) string {
	encoded, err := json.MarshalIndent(promptPayload{
		Noisy:      toPromptPair(noisy),
		Candidate:  toPromptPair(candidate.Pair),
		Similarity: roundScore(candidate.Score),
	}, "", "  ")
	if err != nil {
		// Only plain strings and numbers are encoded; unreachable in practice.
		return noisy.Label() + " vs " + candidate.Pair.Label()
	}
	return string(encoded)
}

func roundScore(score float64) float64 {
	return float64(int(score*1000+0.5)) / 1000
}
