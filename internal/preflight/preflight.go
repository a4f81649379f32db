package preflight

import (
	"context"

	"saaqreg/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Required checks abort a run when they fail. Optional ones only
	// degrade it.
	Required bool
	Detail   string
}

// RunAll executes the data source and directory checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDataset(ctx, cfg.Paths.Dataset),
		// A missing catalog degrades every authority verdict but the run
		// still produces a decision per pair.
		CheckCatalog(ctx, cfg.Paths.Catalog, cfg.Matching.Separators),
		required(CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir)),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// FirstRequiredFailure returns the first failed required check.
func FirstRequiredFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Required && !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}

func required(r Result) Result {
	r.Required = true
	return r
}
