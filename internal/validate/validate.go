package validate

import (
	"context"

	"saaqreg/internal/pairs"
	"saaqreg/internal/verdict"
)

// Validator judges whether candidate is a plausible correction for noisy.
type Validator interface {
	Validate(ctx context.Context, noisy, candidate pairs.Pair) verdict.Verdict
}
