// Package fileutil writes output files.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the file permission mode for flattened output, which
// may carry API details the owner has not published.
const OwnerReadWrite os.FileMode = 0o600

// WriteAtomic replaces path with data. The data is written to a temporary
// file in the same directory and renamed over path, so a reader sees either
// the old content or the new content, never a partial write.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("fileutil: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("fileutil: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	tmpName = ""
	return nil
}
