package dataset_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"saaqreg/internal/dataset"
	"saaqreg/internal/pairs"
	"saaqreg/internal/testsupport"
)

func seedDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.db")
	var rows []testsupport.Registration
	rows = append(rows, testsupport.Registrations("VOLVO", "XC90", "PAU", 2015, 2011, 2015, 2022)...)
	rows = append(rows, testsupport.Registrations("VOLVO", "XC90", "CAM", 2016, 2023)...)
	rows = append(rows, testsupport.Registrations("VOLV0", "XC90", "PAU", 2019, 2023, 2024)...)
	rows = append(rows, testsupport.Registrations("BMW", "X4", "PAU", 0, 2024)...)
	rows = append(rows, testsupport.Registration{Year: 2023, Make: "", Model: "CIVIC", Type: "PAU"})
	rows = append(rows, testsupport.Registration{Year: 2024, Make: "HONDA", Model: "  ", Type: "PAU"})
	testsupport.WriteDataset(t, path, rows...)
	return path
}

func TestLoadPairsAggregatesPeriod(t *testing.T) {
	path := seedDataset(t)
	ctx := context.Background()
	store, err := dataset.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.LoadPairs(ctx, pairs.NewYearRange(2023, 2024))
	require.NoError(t, err)
	require.Equal(t, 2, snap.Malformed)
	require.Equal(t, 6, snap.Rows)

	set := pairs.NewSet(snap.Pairs)
	require.Equal(t, 3, set.Len())

	volv0, ok := set.Get(pairs.NewKey("VOLV0", "XC90"))
	require.True(t, ok)
	require.Equal(t, pairs.NewYearRange(2023, 2024), volv0.Period)
	require.Equal(t, pairs.NewYearRange(2019, 2019), volv0.ModelYears)
	require.Equal(t, []string{"PAU"}, volv0.Categories)
	require.Equal(t, 2, volv0.Records)

	bmw, ok := set.Get(pairs.NewKey("BMW", "X4"))
	require.True(t, ok)
	require.False(t, bmw.ModelYears.Known())
}

func TestLoadPairsReferencePeriod(t *testing.T) {
	path := seedDataset(t)
	ctx := context.Background()
	store, err := dataset.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.LoadPairs(ctx, pairs.NewYearRange(2011, 2022))
	require.NoError(t, err)
	require.Len(t, snap.Pairs, 1)
	require.Equal(t, "VOLVO", snap.Pairs[0].Make)
	require.Equal(t, 3, snap.Pairs[0].Records)
	require.Zero(t, snap.Malformed)
}

func TestSpanCoversWholeDataset(t *testing.T) {
	path := seedDataset(t)
	ctx := context.Background()
	store, err := dataset.NewOpener(path)(ctx)
	require.NoError(t, err)
	defer store.Close()

	spans, err := store.LoadSpans(ctx)
	require.NoError(t, err)
	require.Len(t, spans, 3)

	span, err := spans.Span(ctx, pairs.NewKey("volvo", "xc90"))
	require.NoError(t, err)
	require.Equal(t, pairs.NewYearRange(2011, 2023), span)

	missing, err := spans.Span(ctx, pairs.NewKey("KIA", "SOUL"))
	require.NoError(t, err)
	require.False(t, missing.Known())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, n)
}

func TestLoadSpansMergesRawSpellings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.db")
	rows := testsupport.Registrations("MAZDA", "CX-3", "PAU", 2016, 2016, 2018)
	rows = append(rows, testsupport.Registrations(" mazda", "cx-3 ", "PAU", 2016, 2021)...)
	testsupport.WriteDataset(t, path, rows...)

	ctx := context.Background()
	store, err := dataset.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	spans, err := store.LoadSpans(ctx)
	require.NoError(t, err)
	require.Equal(t, dataset.Spans{pairs.NewKey("MAZDA", "CX-3"): pairs.NewYearRange(2016, 2021)}, spans)
}

func TestOpenMissingDataset(t *testing.T) {
	_, err := dataset.Open(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	if !errors.Is(err, dataset.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLoadPairsWithoutTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	testsupport.WriteCatalog(t, path)
	store, err := dataset.Open(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.LoadPairs(context.Background(), pairs.NewYearRange(2011, 2022))
	if !errors.Is(err, dataset.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for missing table, got %v", err)
	}
}
