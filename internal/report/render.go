package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const rationaleWidth = 72

// Render writes r in format.
func (r *Report) Render(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return r.renderJSON(w)
	case FormatTable:
		return r.renderText(w, false)
	case FormatMarkdown, "md":
		return r.renderText(w, true)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) renderJSON(w io.Writer) error {
	encoded, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	encoded = append(encoded, '\n')
	_, err = w.Write(encoded)
	return err
}

func (r *Report) renderText(w io.Writer, markdown bool) error {
	var b strings.Builder
	if markdown {
		fmt.Fprintf(&b, "# Make/model regularization %s\n\n", r.RunID)
		fmt.Fprintf(&b, "Generated %s. Reference %s, evaluation %s.\n\n",
			r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.ReferencePeriod, r.EvaluationPeriod)
	} else {
		fmt.Fprintf(&b, "Run %s  generated %s  reference %s  evaluation %s\n",
			r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.ReferencePeriod, r.EvaluationPeriod)
	}

	b.WriteString(render(r.statsTable(), markdown))
	b.WriteString("\n\n")
	if r.DryRun {
		b.WriteString(render(r.workloadTable(), markdown))
		b.WriteString("\n\n")
	}
	b.WriteString(render(r.decisionTable(markdown), markdown))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func render(tw table.Writer, markdown bool) string {
	if markdown {
		return tw.RenderMarkdown()
	}
	tw.SetStyle(table.StyleRounded)
	return tw.Render()
}

func (r *Report) statsTable() table.Writer {
	s := r.Stats
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Metric", "Count"})
	for _, row := range []struct {
		name  string
		value int
	}{
		{"Reference pairs", s.ReferencePairs},
		{"Evaluation pairs", s.EvaluationPairs},
		{"Noisy pairs", s.NoisyPairs},
		{"Malformed (excluded)", s.Malformed},
		{"No candidate", s.NoCandidate},
		{"Vetoed", s.Vetoed},
		{"Filtered", s.Filtered},
		{"Shortcut", s.Shortcut},
		{"Arbitrated", s.Arbitrated},
		{"Failed", s.Failed},
		{"Regularized", s.Regularized},
		{"Preserved", s.Preserved},
		{"Degraded verdicts", s.DegradedVerdicts},
	} {
		tw.AppendRow(table.Row{row.name, row.value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return tw
}

func (r *Report) workloadTable() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Noisy", "Candidate", "Score"})
	for _, w := range r.Workload {
		tw.AppendRow(table.Row{w.Pair.Label(), w.Candidate.Pair.Label(), formatScore(w.Candidate.Score)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	return tw
}

func (r *Report) decisionTable(markdown bool) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Make", "Model", "Records", "Candidate", "Score", "Decision", "Path", "Rule", "Degraded", "Rationale"})
	for _, d := range r.Decisions {
		candidate, score := "-", "-"
		if d.Candidate != nil {
			candidate = d.Candidate.Pair.Label()
			score = formatScore(d.Candidate.Score)
		}
		decision := "preserve"
		if d.ShouldRegularize {
			decision = "regularize"
		}
		rule := d.Rule
		if rule == "" {
			rule = "-"
		}
		rationale := d.Rationale
		if !markdown {
			rationale = truncate(rationale, rationaleWidth)
		}
		tw.AppendRow(table.Row{
			d.Pair.Make, d.Pair.Model, d.Pair.Records, candidate, score,
			decision, string(d.Path), rule, d.Degraded(), rationale,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	return tw
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
