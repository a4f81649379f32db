package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"saaqreg/internal/candidates"
	"saaqreg/internal/similarity"
)

type scoreOutput struct {
	similarity.Breakdown
	Vetoed     bool   `json:"vetoed"`
	VetoReason string `json:"veto_reason,omitempty"`
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score <identifier> <identifier>",
		Short: "Show how two identifiers score against each other",
		Long: `Scores two identifiers with the configured similarity blend and reports the
edit and Jaro-Winkler components, whether the separator boost applied and
whether the numeric veto would reject the pair.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy := candidates.PolicyFromConfig(cfg)
			out := explainScore(similarity.New(policy.Similarity), policy.Veto, args[0], args[1])
			if asJSON {
				return writeJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScore(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func explainScore(scorer *similarity.Scorer, veto similarity.Veto, a, b string) scoreOutput {
	out := scoreOutput{Breakdown: scorer.Explain(a, b)}
	out.Vetoed, out.VetoReason = veto.Diverges(a, b)
	return out
}

func renderScore(out scoreOutput) string {
	veto := "no"
	if out.Vetoed {
		veto = "yes: " + out.VetoReason
	}
	rows := [][]string{
		{"Normalized", out.Left + " | " + out.Right},
		{"Edit similarity", formatFloat(out.Edit)},
		{"Jaro-Winkler", formatFloat(out.JaroWinkler)},
		{"Separator boost", yesNo(out.Boosted)},
		{"Score", formatFloat(out.Score)},
		{"Numeric veto", veto},
	}
	return renderTable([]string{"Component", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}
