package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"saaqreg/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		list   bool
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Show the log of a past run (newest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if list {
				runs, err := logs.List(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintf(out, "No run logs in %s\n", cfg.Paths.LogDir)
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{run.ID, run.Started.Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(run.Size)), run.Path})
				}
				fmt.Fprintln(out, renderTable([]string{"Run", "Started (UTC)", "Size", "Path"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			run, err := logs.Find(cfg.Paths.LogDir, id)
			if err != nil {
				if errors.Is(err, logs.ErrNoRuns) {
					fmt.Fprintln(out, "No run logs yet; run `saaqreg run` first")
					return nil
				}
				return err
			}
			tailed, err := logs.Tail(run.Path, logs.TailOptions{Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			for _, line := range tailed {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&list, "list", false, "List run logs instead of showing one")
	cmd.Flags().StringVar(&filter.Pair, "pair", "", "Only show lines for a pair (MAKE/MODEL)")
	cmd.Flags().StringVar(&filter.EventType, "event", "", "Only show lines with this event_type")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}
