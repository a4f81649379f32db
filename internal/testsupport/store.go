package testsupport

import (
	"database/sql"
	"testing"

	"saaqreg/internal/storage"
)

// Registration is one dataset row. Zero ModelYear and empty Type are stored
// as NULL.
type Registration struct {
	Year      int
	Make      string
	Model     string
	ModelYear int
	Type      string
}

// Registrations expands one make/model into a row per registration year.
func Registrations(makeName, model, vehicleType string, modelYear int, years ...int) []Registration {
	out := make([]Registration, 0, len(years))
	for _, year := range years {
		out = append(out, Registration{Year: year, Make: makeName, Model: model, ModelYear: modelYear, Type: vehicleType})
	}
	return out
}

// CatalogEntry is one authoritative catalog row.
type CatalogEntry struct {
	Make     string
	Model    string
	Category string
}

const datasetSchema = `
CREATE TABLE IF NOT EXISTS vehicles (
    year INTEGER NOT NULL,
    make TEXT,
    model TEXT,
    model_year INTEGER,
    vehicle_type TEXT
)`

const catalogSchema = `
CREATE TABLE IF NOT EXISTS catalog (
    make TEXT NOT NULL,
    model TEXT NOT NULL,
    category TEXT
)`

// WriteDataset creates (or extends) a dataset database at path.
func WriteDataset(t testing.TB, path string, rows ...Registration) {
	t.Helper()
	db := openFixture(t, path, datasetSchema)
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin dataset tx: %v", err)
	}
	for _, row := range rows {
		if _, err := tx.Exec(
			`INSERT INTO vehicles (year, make, model, model_year, vehicle_type) VALUES (?, ?, ?, ?, ?)`,
			row.Year, row.Make, row.Model, nullInt(row.ModelYear), nullString(row.Type),
		); err != nil {
			_ = tx.Rollback()
			t.Fatalf("insert registration %+v: %v", row, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit dataset: %v", err)
	}
}

// WriteCatalog creates (or extends) a catalog database at path.
func WriteCatalog(t testing.TB, path string, entries ...CatalogEntry) {
	t.Helper()
	db := openFixture(t, path, catalogSchema)
	defer db.Close()

	for _, entry := range entries {
		if _, err := db.Exec(
			`INSERT INTO catalog (make, model, category) VALUES (?, ?, ?)`,
			entry.Make, entry.Model, nullString(entry.Category),
		); err != nil {
			t.Fatalf("insert catalog entry %+v: %v", entry, err)
		}
	}
}

func openFixture(t testing.TB, path, schema string) *sql.DB {
	t.Helper()
	db, err := storage.OpenWritable(path)
	if err != nil {
		t.Fatalf("open fixture %s: %v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		t.Fatalf("create schema in %s: %v", path, err)
	}
	return db
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
