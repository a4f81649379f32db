// Package fileutil writes output files atomically under a directory lock.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file created in every directory WriteFileAtomic
// writes to.
const LockName = ".saaqreg.lock"

// ErrVerify is returned when the bytes on disk do not match what was written.
var ErrVerify = errors.New("written file failed verification")

// WriteFileAtomic writes data to a temp file beside path, verifies its
// SHA256 and size, then renames it over path. The directory lock is held
// throughout so concurrent writers never interleave. The temp file is
// removed on any failure.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", dir, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := verify(tmpName, data); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	committed = true
	return nil
}

func verify(path string, want []byte) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open for verification: %w", err)
	}
	defer in.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, in)
	if err != nil {
		return fmt.Errorf("read for verification: %w", err)
	}
	if size != int64(len(want)) {
		return fmt.Errorf("%w: size mismatch: wrote %d bytes, found %d", ErrVerify, len(want), size)
	}
	wantSum := sha256.Sum256(want)
	if !bytes.Equal(hasher.Sum(nil), wantSum[:]) {
		return fmt.Errorf("%w: checksum mismatch for %s", ErrVerify, path)
	}
	return nil
}
