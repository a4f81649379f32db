package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"saaqreg/internal/pairs"
	"saaqreg/internal/storage"
)

// ErrUnavailable marks failures to open or query the dataset.
var ErrUnavailable = errors.New("dataset unavailable")

// Store is a read-only dataset handle.
type Store struct {
	db *sql.DB
}

// Opener opens a fresh read-only handle.
type Opener func(ctx context.Context) (*Store, error)

// NewOpener returns an Opener for the dataset at path.
func NewOpener(path string) Opener {
	return func(ctx context.Context) (*Store, error) {
		return Open(ctx, path)
	}
}

// Open connects to the dataset at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := storage.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Snapshot is the aggregated view of one registration period.
type Snapshot struct {
	Period pairs.YearRange
	Pairs  []pairs.Pair
	// Malformed counts rows excluded for a missing make or model.
	Malformed int
	Rows      int
}

const loadPairsQuery = `
SELECT make,
       model,
       GROUP_CONCAT(DISTINCT vehicle_type),
       MIN(model_year),
       MAX(model_year),
       MIN(year),
       MAX(year),
       COUNT(*)
FROM vehicles
WHERE year BETWEEN ? AND ?
GROUP BY make, model
ORDER BY make, model`

// LoadPairs aggregates every make/model pair registered within period.
func (s *Store) LoadPairs(ctx context.Context, period pairs.YearRange) (*Snapshot, error) {
	if !period.Known() {
		return nil, fmt.Errorf("load pairs: invalid period %s", period)
	}
	var snap *Snapshot
	err := storage.RetryOnBusy(ctx, func() error {
		var loadErr error
		snap, loadErr = s.loadPairs(ctx, period)
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load pairs %s: %w", ErrUnavailable, period, err)
	}
	return snap, nil
}

func (s *Store) loadPairs(ctx context.Context, period pairs.YearRange) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, loadPairsQuery, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &Snapshot{Period: period}
	for rows.Next() {
		var (
			makeName, model, categories sql.NullString
			minModel, maxModel          sql.NullInt64
			minYear, maxYear            sql.NullInt64
			count                       int
		)
		if err := rows.Scan(&makeName, &model, &categories, &minModel, &maxModel, &minYear, &maxYear, &count); err != nil {
			return nil, err
		}
		snap.Rows += count
		pair, err := pairs.New(
			makeName.String,
			model.String,
			splitCategories(categories.String),
			pairs.NewYearRange(int(minModel.Int64), int(maxModel.Int64)),
			pairs.NewYearRange(int(minYear.Int64), int(maxYear.Int64)),
			count,
		)
		if errors.Is(err, pairs.ErrMalformed) {
			snap.Malformed += count
			continue
		}
		if err != nil {
			return nil, err
		}
		snap.Pairs = append(snap.Pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

const spansQuery = `
SELECT make, model, MIN(year), MAX(year)
FROM vehicles
GROUP BY make, model`

// Spans maps every pair in the dataset to the registration years in which it
// appears. It is immutable once loaded and safe to share between tasks.
type Spans map[pairs.Key]pairs.YearRange

// Span implements the temporal validator's span source. An unknown range
// means the pair was never registered.
func (s Spans) Span(_ context.Context, key pairs.Key) (pairs.YearRange, error) {
	return s[key], nil
}

// LoadSpans aggregates registration spans for the whole dataset in one pass.
// Raw spellings that canonicalize to the same key are merged.
func (s *Store) LoadSpans(ctx context.Context) (Spans, error) {
	var spans Spans
	err := storage.RetryOnBusy(ctx, func() error {
		var loadErr error
		spans, loadErr = s.loadSpans(ctx)
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load spans: %w", ErrUnavailable, err)
	}
	return spans, nil
}

func (s *Store) loadSpans(ctx context.Context) (Spans, error) {
	rows, err := s.db.QueryContext(ctx, spansQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spans := make(Spans)
	for rows.Next() {
		var (
			makeName, model  sql.NullString
			minYear, maxYear sql.NullInt64
		)
		if err := rows.Scan(&makeName, &model, &minYear, &maxYear); err != nil {
			return nil, err
		}
		key := pairs.NewKey(makeName.String, model.String)
		if key.Make == "" || key.Model == "" || !minYear.Valid {
			continue
		}
		span := pairs.NewYearRange(int(minYear.Int64), int(maxYear.Int64))
		spans[key] = spans[key].Union(span)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return spans, nil
}

// Count returns the number of registration rows, used by preflight checks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := storage.RetryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrUnavailable, err)
	}
	return n, nil
}

func splitCategories(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}
