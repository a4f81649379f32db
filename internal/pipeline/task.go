package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"saaqreg/internal/catalog"
	"saaqreg/internal/classifier"
	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/services"
	"saaqreg/internal/validate"
	"saaqreg/internal/verdict"
)

// runTask resolves one validation-path pair. It always returns a Decision.
func (p *Pipeline) runTask(ctx context.Context, t task) (decision verdict.Decision) {
	ctx = services.WithPair(ctx, t.pair.Key().String())
	ctx = services.WithStage(ctx, "validate")
	logger := logging.WithContext(ctx, p.logger)
	cand := t.candidate

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "task panicked; pair preserved", "task_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this as a bug with the log file attached"),
			)
			decision = verdict.Preserve(t.pair, &cand, verdict.PathFailed, fmt.Sprintf("task failed: %v", r))
		}
	}()

	taskCtx, cancel := context.WithTimeout(ctx, p.opts.TaskTimeout)
	defer cancel()

	lookup := p.openCatalog(taskCtx, logger)
	defer lookup.Close()

	verdicts := []verdict.Verdict{
		validate.NewAuthority(lookup, p.opts.Authority, p.logger).Validate(taskCtx, t.pair, cand.Pair),
		validate.NewTemporal(t.spans, p.opts.Temporal, p.logger).Validate(taskCtx, t.pair, cand.Pair),
	}
	if p.arbitrator.NeedsClassifier(cand, verdicts) {
		var completer classifier.Completer
		if p.deps.Classifier != nil {
			completer = p.deps.Classifier()
		}
		verdicts = append(verdicts, classifier.New(completer, p.deps.Limits, p.logger).Classify(taskCtx, t.pair, cand))
	}

	if errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		logging.WarnWithContext(logger, "task timed out; pair preserved", "task_timeout",
			logging.Duration("timeout", p.opts.TaskTimeout),
			logging.String(logging.FieldErrorHint, "raise pipeline.task_timeout_seconds or check external services"),
			logging.String(logging.FieldImpact, "pair preserved without a full decision"),
		)
		d := verdict.Preserve(t.pair, &cand, verdict.PathFailed, fmt.Sprintf("task timed out after %s", p.opts.TaskTimeout))
		d.Verdicts = verdicts
		return d
	}

	decision = p.arbitrator.Decide(ctx, t.pair, cand, verdicts)
	result := "preserve"
	if decision.ShouldRegularize {
		result = "regularize"
	}
	logger.Info("pair decided",
		logging.Args(append(logging.DecisionAttrs("regularization", result, decision.Rule),
			logging.String("candidate", cand.Pair.Key().String()),
			logging.Float64("score", cand.Score),
			logging.Int("degraded", decision.Degraded()),
		)...)...,
	)
	return decision
}

func (p *Pipeline) openCatalog(ctx context.Context, logger *slog.Logger) catalog.Lookuper {
	if p.deps.Catalog == nil {
		return unavailableCatalog{err: errors.New("no catalog configured")}
	}
	lookup, err := p.deps.Catalog(ctx)
	if err != nil {
		logger.Debug("catalog handle unavailable", logging.Error(err))
		return unavailableCatalog{err: err}
	}
	return lookup
}

// unavailableCatalog stands in for a catalog that could not be opened so the
// authority verdict degrades with the real cause.
type unavailableCatalog struct{ err error }

func (u unavailableCatalog) Lookup(context.Context, pairs.Key) (catalog.Entry, error) {
	return catalog.Entry{}, u.err
}

func (unavailableCatalog) Close() error { return nil }

// unavailableSpans degrades every temporal verdict to the span load failure.
type unavailableSpans struct{ err error }

func (u unavailableSpans) Span(context.Context, pairs.Key) (pairs.YearRange, error) {
	return pairs.YearRange{}, u.err
}
