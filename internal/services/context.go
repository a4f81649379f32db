package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	pairKeyKey contextKey = "pair"
	stageKey   contextKey = "stage"
)

// WithRunID annotates context with the identifier of the current regularization run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPair annotates context with the display key of the pair being resolved.
func WithPair(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, pairKeyKey, key)
}

// PairFromContext returns the pair display key if present.
func PairFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(pairKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the resolution stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
