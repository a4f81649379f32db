package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"saaqreg/internal/config"
	"saaqreg/internal/logging"
	"saaqreg/internal/notifications"
	"saaqreg/internal/pipeline"
	"saaqreg/internal/preflight"
	"saaqreg/internal/report"
	"saaqreg/internal/services"
)

type runFlags struct {
	dryRun          bool
	skipHealthCheck bool
	output          string
	format          string
	onlyRegularized bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve every noisy make/model pair in the evaluation period",
		Long: `Loads the reference and evaluation periods from the dataset, proposes a
reference candidate for every pair that only appears in the evaluation period,
validates it against the catalog, registration history and the classifier,
and writes a report of the decisions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runResolve(cmd, ctx, cfg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Select candidates only; report the validation workload without calling validators")
	cmd.Flags().BoolVar(&flags.skipHealthCheck, "skip-health-check", false, "Skip the classifier health check before the run")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Report path (default: report_dir/<generated name>, '-' for stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Report format: json, table or markdown (default: report.format)")
	cmd.Flags().BoolVar(&flags.onlyRegularized, "only-regularized", false, "Omit preserved pairs from the report")
	return cmd
}

func runResolve(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, flags runFlags) error {
	format := cfg.Report.Format
	if f := strings.ToLower(strings.TrimSpace(flags.format)); f != "" {
		format = f
	}
	includePreserved := cfg.Report.IncludePreserved && !flags.onlyRegularized

	if !flags.dryRun {
		if err := cfg.ValidateForRun(); err != nil {
			return services.Wrap(services.ErrConfiguration, "run", "validate config", "Classifier is not configured", err)
		}
	}

	logger, runID, logPath, err := ctx.runLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = services.WithRunID(runCtx, runID)

	logger.Info("run starting",
		logging.String("config_fingerprint", cfg.Fingerprint()),
		logging.Bool("dry_run", flags.dryRun),
		logging.String("log_file", logPath),
		logging.String(logging.FieldEventType, "run_start"),
	)

	if err := runPreflight(runCtx, cfg, logger); err != nil {
		return err
	}

	deps, err := pipeline.DepsFromConfig(cfg)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "run", "build dependencies", "Failed to initialize run dependencies", err)
	}
	opts := pipeline.OptionsFromConfig(cfg)
	opts.DryRun = flags.dryRun
	p := pipeline.New(opts, deps, logger)

	if !flags.dryRun && !flags.skipHealthCheck {
		checkClassifier(runCtx, p, cfg, logger)
	}

	notifier := notifications.NewService(cfg)

	result, err := p.Run(runCtx)
	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
			logging.Bool("fatal", services.IsFatal(err)),
		)
		notify(logger, "run_failed", func(ctx context.Context) error {
			return notifier.NotifyRunFailed(ctx, runID, err)
		})
		return err
	}

	rep := report.New(report.Meta{
		RunID:            runID,
		GeneratedAt:      time.Now(),
		Fingerprint:      cfg.Fingerprint(),
		ReferencePeriod:  opts.Reference.String(),
		EvaluationPeriod: opts.Evaluation.String(),
	}, result, includePreserved)

	summaryOut := cmd.OutOrStdout()
	reportPath := strings.TrimSpace(flags.output)
	switch reportPath {
	case "-":
		summaryOut = cmd.ErrOrStderr()
		if err := rep.Render(cmd.OutOrStdout(), format); err != nil {
			return services.Wrap(services.ErrStorage, "report", "render", "Failed to write report to stdout", err)
		}
		reportPath = "stdout"
	default:
		if reportPath == "" {
			reportPath = filepath.Join(cfg.Paths.ReportDir, rep.FileName(format))
		} else if reportPath, err = config.ExpandPath(reportPath); err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		if err := rep.Write(reportPath, format); err != nil {
			logging.ErrorWithContext(logger, "report write failed", "report_write_failed",
				logging.String("path", reportPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check report_dir permissions and free space"),
			)
			return err
		}
	}

	logger.Info("run complete",
		logging.String("report", reportPath),
		logging.Int("regularized", result.Stats.Regularized),
		logging.Int("preserved", result.Stats.Preserved),
		logging.Duration("elapsed", result.Stats.Elapsed),
		logging.String(logging.FieldEventType, "run_complete"),
	)

	notify(logger, "run_completed", func(ctx context.Context) error {
		return notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
			RunID:       runID,
			DryRun:      flags.dryRun,
			NoisyPairs:  result.Stats.NoisyPairs,
			Regularized: result.Stats.Regularized,
			Preserved:   result.Stats.Preserved,
			Failed:      result.Stats.Failed,
			Degraded:    result.Stats.DegradedVerdicts,
			Elapsed:     result.Stats.Elapsed,
			ReportPath:  reportPath,
		})
	})

	for _, line := range renderRunSummary(result.Stats, reportPath, flags.dryRun, shouldColorize(summaryOut)) {
		fmt.Fprintln(summaryOut, line)
	}
	return nil
}

// notify delivers one notification on a fresh context so that an interrupted
// run can still report its failure.
func notify(logger *slog.Logger, event string, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := send(ctx); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("notification", event),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

// checkClassifier probes the classifier once. A failure is not fatal: every
// classifier verdict of the run will degrade and the affected pairs are
// preserved.
func checkClassifier(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, logger *slog.Logger) {
	result := preflight.CheckClassifier(ctx, "Classifier", p)
	if result.Passed {
		logger.Debug("classifier healthy", logging.String("model", cfg.LLM.Model))
		return
	}
	logging.WarnWithContext(logger, "classifier health check failed; continuing", "classifier_unhealthy",
		logging.String("provider", cfg.LLM.Provider),
		logging.String("model", cfg.LLM.Model),
		logging.String("detail", result.Detail),
		logging.String(logging.FieldErrorHint, "check llm.api_key, llm.base_url and network access"),
		logging.String(logging.FieldImpact, "pairs needing the classifier will be preserved"),
	)
}

// runPreflight logs every failed check and returns an error for the first
// required one.
func runPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, cfg)
	for _, r := range results {
		if r.Passed {
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.Bool("required", r.Required),
			logging.String("detail", r.Detail),
		)
	}
	if failed, ok := preflight.FirstRequiredFailure(results); ok {
		return services.Wrap(services.ErrStorage, "preflight", failed.Name, failed.Detail, nil)
	}
	return nil
}
