package store

import (
	"errors"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes b to path through a temp file in the same directory,
// so readers never observe a partially written export.
func WriteFileAtomic(path string, b []byte) error {
	path = filepath.Clean(path)
	if path == "" || path == "." {
		return errors.New("write file: missing path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, ".export-*.tmp", path, b, 0o644)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
