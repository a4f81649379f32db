package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"saaqreg/internal/arbitrate"
	"saaqreg/internal/candidates"
	"saaqreg/internal/classifier"
	"saaqreg/internal/logging"
	"saaqreg/internal/pairs"
	"saaqreg/internal/services"
	"saaqreg/internal/validate"
	"saaqreg/internal/verdict"
)

// Workload is a pair that needs validation, reported by dry runs.
type Workload struct {
	Pair      pairs.Pair      `json:"pair"`
	Candidate pairs.Candidate `json:"candidate"`
}

// Result is the outcome of a run.
type Result struct {
	Decisions []verdict.Decision
	// Workload lists the validation-path pairs of a dry run.
	Workload []Workload
	Stats    Stats
	DryRun   bool
}

// Pipeline orchestrates a run.
type Pipeline struct {
	opts       Options
	deps       Deps
	logger     *slog.Logger
	arbitrator *arbitrate.Arbitrator
}

// New builds a pipeline.
func New(opts Options, deps Deps, logger *slog.Logger) *Pipeline {
	opts = opts.normalized()
	logger = logging.NewComponentLogger(logger, "pipeline")
	return &Pipeline{
		opts:       opts,
		deps:       deps,
		logger:     logger,
		arbitrator: arbitrate.New(opts.Thresholds, logger),
	}
}

// HealthCheck verifies the classifier answers. Completers that cannot be
// checked pass.
func (p *Pipeline) HealthCheck(ctx context.Context) error {
	if p.deps.Classifier == nil {
		return services.Wrap(services.ErrConfiguration, "classifier", "health check", "no classifier configured", nil)
	}
	if checker, ok := p.deps.Classifier().(classifier.HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}

type task struct {
	pair      pairs.Pair
	candidate pairs.Candidate
	spans     validate.SpanSource
}

// Run executes one pass and returns the sorted decisions.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	logger := logging.WithContext(ctx, p.logger)

	ref, noisy, spans, stats, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("sets built",
		logging.String("reference_period", p.opts.Reference.String()),
		logging.String("evaluation_period", p.opts.Evaluation.String()),
		logging.Int("reference_pairs", stats.ReferencePairs),
		logging.Int("evaluation_pairs", stats.EvaluationPairs),
		logging.Int("noisy_pairs", stats.NoisyPairs),
		logging.Int("malformed", stats.Malformed),
	)

	selector := candidates.NewSelector(ref, p.opts.Policy)
	floor := selector.Policy().CandidateFloor
	decisions := make([]verdict.Decision, 0, noisy.Len())
	var tasks []task
	for _, pair := range noisy.Pairs() {
		sel := selector.Select(pair)
		if sel.FastPath() {
			d := sel.Decision(floor)
			logger.Debug("fast path decision",
				logging.Args(append(logging.DecisionAttrs("selection", string(d.Path), d.Rationale),
					logging.String(logging.FieldPair, pair.Key().String()))...)...)
			decisions = append(decisions, d)
			continue
		}
		tasks = append(tasks, task{pair: pair, candidate: *sel.Candidate, spans: spans})
	}
	stats.ValidationTasks = len(tasks)

	result := &Result{DryRun: p.opts.DryRun}
	if p.opts.DryRun {
		for _, t := range tasks {
			result.Workload = append(result.Workload, Workload{Pair: t.pair, Candidate: t.candidate})
		}
		logger.Info("dry run: validation skipped",
			logging.Int("fast_path", len(decisions)),
			logging.Int("validation_tasks", len(tasks)),
		)
	} else {
		logger.Info("validation starting",
			logging.Int("fast_path", len(decisions)),
			logging.Int("validation_tasks", len(tasks)),
			logging.Int("workers", p.opts.Workers),
		)
		decided, err := p.validateAll(ctx, tasks)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, decided...)
	}

	slices.SortFunc(decisions, func(a, b verdict.Decision) int {
		return a.Key().Compare(b.Key())
	})
	stats.count(decisions)
	stats.Elapsed = time.Since(start)
	result.Decisions = decisions
	result.Stats = stats

	logger.Info("run complete",
		logging.Int("decisions", len(decisions)),
		logging.Int("regularized", stats.Regularized),
		logging.Int("preserved", stats.Preserved),
		logging.Int("degraded_verdicts", stats.DegradedVerdicts),
		logging.Duration("elapsed", stats.Elapsed),
	)
	return result, nil
}

// load builds the reference and noisy sets. Outside dry runs it also loads
// every pair's registration span once so validation tasks never scan the
// dataset themselves.
func (p *Pipeline) load(ctx context.Context) (*pairs.ReferenceSet, *pairs.Set, validate.SpanSource, Stats, error) {
	var stats Stats
	if p.deps.Dataset == nil {
		return nil, nil, nil, stats, services.Wrap(services.ErrConfiguration, "load", "open dataset", "no dataset configured", nil)
	}
	store, err := p.deps.Dataset(ctx)
	if err != nil {
		return nil, nil, nil, stats, services.Wrap(services.ErrStorage, "load", "open dataset", "", err)
	}
	defer store.Close()

	refSnap, err := store.LoadPairs(ctx, p.opts.Reference)
	if err != nil {
		return nil, nil, nil, stats, services.Wrap(services.ErrStorage, "load", "reference snapshot", "", err)
	}
	evalSnap, err := store.LoadPairs(ctx, p.opts.Evaluation)
	if err != nil {
		return nil, nil, nil, stats, services.Wrap(services.ErrStorage, "load", "evaluation snapshot", "", err)
	}

	var spans validate.SpanSource
	if !p.opts.DryRun {
		loaded, err := store.LoadSpans(ctx)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "registration spans unavailable; temporal checks degraded", "spans_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "temporal verdicts are neutral for this run"),
			)
			spans = unavailableSpans{err: err}
		} else {
			spans = loaded
		}
	}

	ref := pairs.NewReferenceSet(refSnap.Pairs)
	eval := pairs.NewSet(evalSnap.Pairs)
	noisy := pairs.Subtract(eval, ref)
	stats.ReferencePairs = ref.Len()
	stats.EvaluationPairs = eval.Len()
	stats.NoisyPairs = noisy.Len()
	stats.Malformed = refSnap.Malformed + evalSnap.Malformed
	return ref, noisy, spans, stats, nil
}

func (p *Pipeline) validateAll(ctx context.Context, tasks []task) ([]verdict.Decision, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	var (
		mu      sync.Mutex
		results = make([]verdict.Decision, 0, len(tasks))
		sampler = logging.NewProgressSampler(p.opts.ProgressEvery)
		started = time.Now()
		logger  = logging.WithContext(ctx, p.logger)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			d := p.runTask(gctx, t)
			mu.Lock()
			results = append(results, d)
			done := len(results)
			mu.Unlock()
			if sampler.ShouldLog(done, len(tasks)) {
				logProgress(logger, done, len(tasks), time.Since(started))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "validate", "run", "canceled before all pairs were decided", err)
	}
	return results, nil
}

func logProgress(logger *slog.Logger, done, total int, elapsed time.Duration) {
	attrs := []logging.Attr{
		logging.Int("done", done),
		logging.Int("total", total),
		logging.Duration("elapsed", elapsed.Round(time.Millisecond)),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		rate := float64(done) / secs
		attrs = append(attrs, logging.Float64("pairs_per_second", rate))
		if remaining := total - done; remaining > 0 && rate > 0 {
			eta := time.Duration(float64(remaining) / rate * float64(time.Second))
			attrs = append(attrs, logging.Duration("eta", eta.Round(time.Second)))
		}
	}
	logger.Info("validation progress", logging.Args(attrs...)...)
}
