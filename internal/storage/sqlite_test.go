package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenReadOnlyMissingFile(t *testing.T) {
	_, err := OpenReadOnly(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")
	db, err := OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE t (v INTEGER); INSERT INTO t VALUES (1);`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ro, err := OpenReadOnly(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer ro.Close()

	var v int
	if err := ro.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil || v != 1 {
		t.Fatalf("read failed: v=%d err=%v", v, err)
	}
	if _, err := ro.Exec(`INSERT INTO t VALUES (2)`); err == nil {
		t.Fatal("expected write through read-only handle to fail")
	}
}

func TestRetryOnBusy(t *testing.T) {
	attempts := 0
	err := RetryOnBusy(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success on third attempt, got attempts=%d err=%v", attempts, err)
	}

	attempts = 0
	permanent := fmt.Errorf("no such table: vehicles")
	if err := RetryOnBusy(context.Background(), func() error {
		attempts++
		return permanent
	}); !errors.Is(err, permanent) || attempts != 1 {
		t.Fatalf("expected no retry for non-busy error, attempts=%d err=%v", attempts, err)
	}
}

func TestReadOnlyDSN(t *testing.T) {
	dsn := readOnlyDSN("/data/saaq dataset.db")
	if !strings.HasPrefix(dsn, "file:///data/saaq%20dataset.db?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	for _, fragment := range []string{"mode=ro", "query_only%281%29"} {
		if !strings.Contains(dsn, fragment) {
			t.Fatalf("expected %q in %q", fragment, dsn)
		}
	}
}
