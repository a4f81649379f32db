package report

import (
	"time"

	"saaqreg/internal/pipeline"
	"saaqreg/internal/verdict"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
)

// Report is the serialized outcome of a run.
type Report struct {
	RunID            string              `json:"run_id"`
	GeneratedAt      time.Time           `json:"generated_at"`
	Fingerprint      string              `json:"config_fingerprint,omitempty"`
	ReferencePeriod  string              `json:"reference_period"`
	EvaluationPeriod string              `json:"evaluation_period"`
	DryRun           bool                `json:"dry_run,omitempty"`
	Stats            pipeline.Stats      `json:"stats"`
	Decisions        []verdict.Decision  `json:"decisions"`
	Workload         []pipeline.Workload `json:"workload,omitempty"`
}

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID            string
	GeneratedAt      time.Time
	Fingerprint      string
	ReferencePeriod  string
	EvaluationPeriod string
}

// New assembles a report. Preserved decisions are dropped unless
// includePreserved is set; the statistics always cover every decision.
func New(meta Meta, result *pipeline.Result, includePreserved bool) *Report {
	r := &Report{
		RunID:            meta.RunID,
		GeneratedAt:      meta.GeneratedAt.UTC(),
		Fingerprint:      meta.Fingerprint,
		ReferencePeriod:  meta.ReferencePeriod,
		EvaluationPeriod: meta.EvaluationPeriod,
		Decisions:        []verdict.Decision{},
	}
	if result == nil {
		return r
	}
	r.DryRun = result.DryRun
	r.Stats = result.Stats
	r.Workload = result.Workload
	for _, d := range result.Decisions {
		if !includePreserved && !d.ShouldRegularize {
			continue
		}
		r.Decisions = append(r.Decisions, d)
	}
	return r
}
