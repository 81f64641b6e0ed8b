package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirForFile creates the parent directory of filePath (mode 0755)
// if it does not already exist.
func EnsureDirForFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// RequireParentDir returns an error unless the parent directory of filePath
// exists and is a directory. Unlike EnsureDirForFile it never creates
// anything.
func RequireParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("parent directory of %s: %w", filePath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("parent of %s is not a directory: %s", filePath, dir)
	}
	return nil
}
