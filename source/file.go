package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/erraggy/specflat/flaterrors"
)

// FileSource reads documents from the local filesystem. Identifiers are
// absolute, cleaned paths.
type FileSource struct {
	// Root, when non-empty, confines every resolved path to this directory
	// and its subdirectories. Includes that escape it are rejected.
	Root string
	// MaxSize is the maximum document size in bytes (0 means MaxDocumentSize).
	MaxSize int64
}

// Resolve joins ref against the directory of base. An empty base resolves
// relative to the working directory.
func (s *FileSource) Resolve(base, ref string) (string, error) {
	target := filepath.FromSlash(ref)
	if !filepath.IsAbs(target) {
		dir := "."
		if base != "" {
			dir = filepath.Dir(base)
		}
		target = filepath.Join(dir, target)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("source: failed to resolve file path %s: %w", ref, err)
	}
	id := normalizeID(abs)

	if s.Root != "" {
		absRoot, err := filepath.Abs(s.Root)
		if err != nil {
			return "", fmt.Errorf("source: failed to resolve root directory: %w", err)
		}
		rel, err := filepath.Rel(absRoot, id)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", &flaterrors.ReferenceError{
				Ref:             ref,
				RefType:         "include",
				IsPathTraversal: true,
			}
		}
	}
	return id, nil
}

// Fetch reads the file at id.
func (s *FileSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &flaterrors.NotFoundError{ID: id, Cause: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("source: failed to stat %s: %w", id, err)
	}
	if info.IsDir() {
		return nil, &flaterrors.NotFoundError{ID: id, Cause: errors.New("is a directory")}
	}
	limit := s.maxSize()
	if info.Size() > limit {
		return nil, &flaterrors.ResourceLimitError{
			ResourceType: "document_size",
			Limit:        limit,
			Actual:       info.Size(),
			Message:      id,
		}
	}
	data, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("source: failed to read %s: %w", id, err)
	}
	return data, nil
}

func (s *FileSource) maxSize() int64 {
	if s.MaxSize > 0 {
		return s.MaxSize
	}
	return MaxDocumentSize
}

// FSSource reads documents from an fs.FS. Identifiers are slash-separated
// paths relative to the root of the file system, as accepted by fs.ValidPath.
type FSSource struct {
	FS fs.FS
}

// Resolve joins ref against the directory of base. A ref starting with "/"
// is taken relative to the root of the file system.
func (s *FSSource) Resolve(base, ref string) (string, error) {
	var target string
	if strings.HasPrefix(ref, "/") {
		target = strings.TrimPrefix(ref, "/")
	} else {
		target = path.Join(path.Dir(base), ref)
	}
	target = path.Clean(target)
	if !fs.ValidPath(target) {
		return "", &flaterrors.ReferenceError{
			Ref:             ref,
			RefType:         "include",
			IsPathTraversal: true,
		}
	}
	return normalizeID(target), nil
}

// Fetch reads the file at id from the file system.
func (s *FSSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, &flaterrors.NotFoundError{ID: id, Cause: err}
		}
		return nil, fmt.Errorf("source: failed to read %s: %w", id, err)
	}
	return data, nil
}
