package flaterrors

import "fmt"

// Kind classifies a Diagnostic.
type Kind string

const (
	// KindNotFound marks an include whose target does not exist.
	KindNotFound Kind = "not-found"
	// KindMalformed marks an include whose structured content failed to parse
	// and was spliced in as raw text.
	KindMalformed Kind = "malformed"
	// KindUnresolved marks an include reference that could not be turned into
	// a document identifier (path traversal, remote documents disabled).
	KindUnresolved Kind = "unresolved"
	// KindFetch marks an include target that exists but could not be read.
	KindFetch Kind = "fetch"
	// KindUnregistered marks a resourceType or trait name missing from the
	// registry.
	KindUnregistered Kind = "unregistered"
)

// Diagnostic records a degraded, non-fatal condition encountered while
// loading or resolving. The affected node is left empty, raw, or
// unresolved and processing continues.
type Diagnostic struct {
	Kind Kind
	// Ref is the include reference or template/trait name as written
	Ref string
	// ID is the resolved document identifier, when one is known
	ID string
	// From locates the referrer: the including document, or the path and
	// method of the referencing node
	From string
	// Err is the underlying error, if any
	Err error
}

// String returns a one-line description.
func (d Diagnostic) String() string {
	msg := fmt.Sprintf("%s: %s", d.Kind, d.Ref)
	if d.ID != "" && d.ID != d.Ref {
		msg += " (" + d.ID + ")"
	}
	if d.From != "" {
		msg += " in " + d.From
	}
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	return msg
}
