package source

import (
	"context"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxDocumentSize is the default maximum size (in bytes) of a single fetched
// document.
const MaxDocumentSize = 10 * 1024 * 1024 // 10MB

// Source is the narrow collaborator the loader depends on to locate and read
// documents. Implementations decide what an identifier is (a file path, a
// URL, a key in an fs.FS).
type Source interface {
	// Resolve joins ref against the directory of the document identified by
	// base and returns the normalized identifier of the target.
	Resolve(base, ref string) (string, error)

	// Fetch returns the raw bytes of the document identified by id.
	// A missing document is reported as a *flaterrors.NotFoundError.
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// IsURL reports whether id is an http:// or https:// URL.
func IsURL(id string) bool {
	return strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")
}

// Ext returns the lower-cased extension of id, ignoring any URL query or
// fragment.
func Ext(id string) string {
	if i := strings.IndexAny(id, "?#"); i >= 0 && IsURL(id) {
		id = id[:i]
	}
	return strings.ToLower(path.Ext(id))
}

// normalizeID returns the canonical Unicode form used for identifier
// equality, so decomposed file names reported by some filesystems compare
// equal to their composed spelling.
func normalizeID(id string) string {
	return norm.NFC.String(id)
}
