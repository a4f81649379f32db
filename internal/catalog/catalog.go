package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"saaqreg/internal/pairs"
	"saaqreg/internal/storage"
)

// ErrUnavailable marks failures to open or query the catalog.
var ErrUnavailable = errors.New("catalog unavailable")

// Entry is the result of a lookup.
type Entry struct {
	Found      bool
	Categories []string
	// Matched is the model spelling that hit, which may be a separator
	// variant of the requested one.
	Matched string
}

// Lookuper answers catalog lookups. Store and the wrapper returned by
// Cache.Wrap implement it.
type Lookuper interface {
	Lookup(ctx context.Context, key pairs.Key) (Entry, error)
	Close() error
}

// Store is a read-only catalog handle.
type Store struct {
	db         *sql.DB
	separators []string
}

// Opener opens a fresh catalog handle.
type Opener func(ctx context.Context) (Lookuper, error)

// Open connects to the catalog at path. Separators drive variant lookups;
// nil means "-".
func Open(ctx context.Context, path string, separators []string) (*Store, error) {
	db, err := storage.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if separators == nil {
		separators = []string{"-"}
	}
	return &Store{db: db, separators: separators}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const lookupQuery = `
SELECT DISTINCT UPPER(TRIM(category))
FROM catalog
WHERE UPPER(TRIM(make)) = ? AND UPPER(TRIM(model)) = ?
ORDER BY 1`

// Lookup finds key, trying separator variants of the model in order.
func (s *Store) Lookup(ctx context.Context, key pairs.Key) (Entry, error) {
	for _, model := range Variants(key.Model, s.separators) {
		var categories []string
		err := storage.RetryOnBusy(ctx, func() error {
			var queryErr error
			categories, queryErr = s.query(ctx, key.Make, model)
			return queryErr
		})
		if err != nil {
			return Entry{}, fmt.Errorf("%w: lookup %s: %w", ErrUnavailable, key, err)
		}
		if categories != nil {
			return Entry{Found: true, Categories: pairs.NormalizeCategories(categories), Matched: model}, nil
		}
	}
	return Entry{}, nil
}

// Count returns the number of catalog rows, used by preflight checks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := storage.RetryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrUnavailable, err)
	}
	return n, nil
}

// query returns nil when no row matched and a non-nil (possibly empty)
// slice when at least one did.
func (s *Store) query(ctx context.Context, makeName, model string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, lookupQuery, makeName, model)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var category sql.NullString
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		if out == nil {
			out = []string{}
		}
		if category.Valid && category.String != "" {
			out = append(out, category.String)
		}
	}
	return out, rows.Err()
}

// Variants lists the model spellings tried by Lookup, deduplicated, in
// order: as given, separators removed, and the primary separator inserted at
// the first letter/digit boundary.
func Variants(model string, separators []string) []string {
	out := []string{model}
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}
	stripped := model
	for _, sep := range separators {
		if sep != "" {
			stripped = strings.ReplaceAll(stripped, sep, "")
		}
	}
	add(stripped)
	if len(separators) > 0 && separators[0] != "" {
		add(insertAtBoundary(stripped, separators[0]))
	}
	return out
}

func insertAtBoundary(value, sep string) string {
	runes := []rune(value)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		if (unicode.IsLetter(prev) && unicode.IsDigit(cur)) || (unicode.IsDigit(prev) && unicode.IsLetter(cur)) {
			return string(runes[:i]) + sep + string(runes[i:])
		}
	}
	return ""
}
