package pathutil

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var literalReplacer = strings.NewReplacer(
	"{", `\{`,
	"}", `\}`,
	"[", `\[`,
	"]", `\]`,
)

// escape makes template braces and brackets literal.
func escape(pattern string) string {
	return literalReplacer.Replace(pattern)
}

// ValidatePattern reports a malformed pattern.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	if !doublestar.ValidatePattern(escape(pattern)) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	return nil
}

// MatchPath reports whether path matches pattern. An empty pattern matches
// every path.
func MatchPath(pattern, path string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(escape(pattern), path)
	return err == nil && ok
}

// MatchName reports whether a schema or type name matches pattern. An empty
// pattern matches every name.
func MatchName(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(escape(pattern), name)
	return err == nil && ok
}
