package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyExact streams exactly n bytes from src to dst and verifies that src
// ends there. A short read means the source shrank after it was sized; a
// successful extra read means it grew. Both are reported as errors so a
// mutating filesystem can never produce a silently inconsistent copy.
func CopyExact(dst io.Writer, src io.Reader, n int64) error {
	written, err := io.CopyN(dst, src, n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("source shrank: expected %d bytes, read %d", n, written)
		}
		return err
	}

	var probe [1]byte
	switch _, err := src.Read(probe[:]); err {
	case io.EOF:
		return nil
	case nil:
		return fmt.Errorf("source grew past the expected %d bytes", n)
	default:
		return fmt.Errorf("verify source end: %w", err)
	}
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// and a rename, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fileutil-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
