package pairs

import (
	"errors"
	"slices"
	"strings"
)

// ErrMalformed marks rows missing a make or a model.
var ErrMalformed = errors.New("malformed identifier pair")

// Key is the identity of a pair.
type Key struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

// NewKey canonicalizes make and model into a Key.
func NewKey(makeName, model string) Key {
	return Key{Make: canonical(makeName), Model: canonical(model)}
}

func canonical(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), " "))
}

func (k Key) String() string {
	return k.Make + "/" + k.Model
}

// Less orders keys by make, then model.
func (k Key) Less(other Key) bool {
	if k.Make != other.Make {
		return k.Make < other.Make
	}
	return k.Model < other.Model
}

// Compare returns -1, 0, or 1 ordering keys by make, then model.
func (k Key) Compare(other Key) int {
	if c := strings.Compare(k.Make, other.Make); c != 0 {
		return c
	}
	return strings.Compare(k.Model, other.Model)
}

// Pair is an observed make/model identifier with descriptive attributes.
type Pair struct {
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	ModelYears YearRange `json:"model_years"`
	Period     YearRange `json:"period"`
	Categories []string  `json:"categories,omitempty"`
	Records    int       `json:"records"`
}

// New validates and canonicalizes a pair. Empty make or model yields
// ErrMalformed.
func New(makeName, model string, categories []string, modelYears, period YearRange, records int) (Pair, error) {
	key := NewKey(makeName, model)
	if key.Make == "" || key.Model == "" {
		return Pair{}, ErrMalformed
	}
	if records < 0 {
		records = 0
	}
	return Pair{
		Make:       key.Make,
		Model:      key.Model,
		ModelYears: modelYears,
		Period:     period,
		Categories: NormalizeCategories(categories),
		Records:    records,
	}, nil
}

// MustNew is New for literals in tests and fixtures.
func MustNew(makeName, model string, categories []string, modelYears, period YearRange) Pair {
	p, err := New(makeName, model, categories, modelYears, period, 1)
	if err != nil {
		panic(err)
	}
	return p
}

// Key returns the pair identity.
func (p Pair) Key() Key {
	return NewKey(p.Make, p.Model)
}

// Label renders "MAKE MODEL", the form the similarity engine compares.
func (p Pair) Label() string {
	return p.Make + " " + p.Model
}

// SharesCategory reports whether both pairs carry a common category code.
func (p Pair) SharesCategory(other Pair) bool {
	return Intersects(p.Categories, other.Categories)
}

// NormalizeCategories upper-cases, trims, dedupes, and sorts category codes.
func NormalizeCategories(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Intersects reports whether two sorted category lists share a value.
func Intersects(a, b []string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

func merge(into, from Pair) Pair {
	into.ModelYears = into.ModelYears.Union(from.ModelYears)
	into.Period = into.Period.Union(from.Period)
	into.Categories = NormalizeCategories(append(append([]string(nil), into.Categories...), from.Categories...))
	into.Records += from.Records
	return into
}

// Candidate is a reference pair proposed for a noisy pair.
type Candidate struct {
	Pair  Pair    `json:"pair"`
	Score float64 `json:"score"`
}
