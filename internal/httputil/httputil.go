// Package httputil provides HTTP method names and helpers shared by the
// flattener, the comparer, and the command line.
package httputil

import (
	"slices"
	"strings"
)

// HTTP Method Constants
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
	MethodConnect = "connect"
)

// StatusOK is the response key compared for examples.
const StatusOK = "200"

// Methods lists the recognized method keys in the order endpoints are
// reported when a resource declares several.
var Methods = []string{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodHead,
	MethodOptions,
	MethodTrace,
	MethodConnect,
}

// IsMethod reports whether key is a recognized method key. Keys are
// case-sensitive: documents name methods in lowercase.
func IsMethod(key string) bool {
	return slices.Contains(Methods, key)
}

// ParseMethods parses a comma-separated method list such as "get,POST".
// Names are lowercased, blanks and duplicates dropped. Unknown names are
// returned in the second result.
func ParseMethods(list string) (methods, unknown []string) {
	for _, part := range strings.Split(list, ",") {
		m := strings.ToLower(strings.TrimSpace(part))
		if m == "" || slices.Contains(methods, m) {
			continue
		}
		if !IsMethod(m) {
			unknown = append(unknown, m)
			continue
		}
		methods = append(methods, m)
	}
	return methods, unknown
}
