// Package options provides shared utilities for option validation across packages.
package options

import (
	"fmt"
	"strings"

	"github.com/erraggy/specflat/flaterrors"
)

// ValidateSingleInputSource ensures exactly one input source is specified.
// names lists the option constructors in the same order as sources, and is
// used to build the error message.
func ValidateSingleInputSource(pkg string, names []string, sources ...bool) error {
	count := 0
	for _, set := range sources {
		if set {
			count++
		}
	}
	switch {
	case count == 0:
		return &flaterrors.ConfigError{
			Option:  "input",
			Message: fmt.Sprintf("%s: must specify an input source (use %s)", pkg, joinOr(names)),
		}
	case count > 1:
		return &flaterrors.ConfigError{
			Option:  "input",
			Message: fmt.Sprintf("%s: must specify exactly one input source", pkg),
		}
	}
	return nil
}

// NonNegative returns a ConfigError when v is negative.
func NonNegative(option string, v int64) error {
	if v < 0 {
		return &flaterrors.ConfigError{
			Option:  option,
			Value:   v,
			Message: "must not be negative",
		}
	}
	return nil
}

func joinOr(names []string) string {
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
