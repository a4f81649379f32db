package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"saaqreg/internal/classifier"
	"saaqreg/internal/config"
	"saaqreg/internal/preflight"
	"saaqreg/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "Set paths.dataset and paths.catalog, then set llm.api_key (or export SAAQREG_LLM_API_KEY) before running saaqreg.\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file and data sources",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return services.Wrap(services.ErrValidation, "config", "validate", "Configuration is invalid", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Fingerprint: %s\n", cfg.Fingerprint())

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
			}
			if err := cfg.ValidateForRun(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Classifier", statusWarn, err.Error(), colorize))
			} else if checkLLM {
				var checker preflight.HealthChecker
				if hc, ok := classifier.NewFactory(cfg.GetLLM())().(classifier.HealthChecker); ok {
					checker = hc
				}
				r := preflight.CheckClassifier(cmd.Context(), "Classifier", checker)
				fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Classifier", statusInfo, cfg.LLM.Provider+" "+cfg.LLM.Model+" (not probed)", colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Send a health check request to the classifier")
	return cmd
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Required:
		return statusError
	default:
		return statusWarn
	}
}
