package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"saaqreg/internal/pipeline"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// renderRunSummary lists the headline counts of a run. Failed tasks and
// degraded verdicts are flagged so a partial outage is visible without
// opening the report.
func renderRunSummary(stats pipeline.Stats, reportPath string, dryRun, colorize bool) []string {
	title := "Run summary"
	if dryRun {
		title = "Dry run summary"
	}
	lines := renderSectionHeader(title, colorize)
	lines = append(lines,
		renderStatusLine("Noisy pairs", statusInfo, fmt.Sprintf("%d of %d evaluation pairs", stats.NoisyPairs, stats.EvaluationPairs), colorize),
		renderStatusLine("Fast path", statusInfo, fmt.Sprintf("%d (no candidate %d, vetoed %d, filtered %d)", stats.FastPath(), stats.NoCandidate, stats.Vetoed, stats.Filtered), colorize),
	)
	if dryRun {
		lines = append(lines, renderStatusLine("Validation workload", statusInfo, fmt.Sprintf("%d pair(s)", stats.ValidationTasks), colorize))
	} else {
		lines = append(lines,
			renderStatusLine("Regularized", statusOK, fmt.Sprintf("%d", stats.Regularized), colorize),
			renderStatusLine("Preserved", statusInfo, fmt.Sprintf("%d", stats.Preserved), colorize),
		)
	}
	if stats.Malformed > 0 {
		lines = append(lines, renderStatusLine("Malformed", statusWarn, fmt.Sprintf("%d pair(s) excluded", stats.Malformed), colorize))
	}
	if stats.Failed > 0 {
		lines = append(lines, renderStatusLine("Failed tasks", statusError, fmt.Sprintf("%d pair(s) preserved after failure", stats.Failed), colorize))
	}
	if stats.DegradedVerdicts > 0 {
		lines = append(lines, renderStatusLine("Degraded verdicts", statusWarn, fmt.Sprintf("%d", stats.DegradedVerdicts), colorize))
	}
	if reportPath != "" {
		lines = append(lines, renderStatusLine("Report", statusInfo, reportPath, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
