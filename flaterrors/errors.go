// Package flaterrors provides structured error types for specflat.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish the few fatal conditions from
// the many degradable ones that flattening tolerates.
//
// # Error Categories
//
//   - NotFoundError: an include target or root document does not exist
//   - ParseError: malformed structured content
//   - ReferenceError: cyclic include/template/trait chains, unregistered names,
//     path traversal attempts
//   - RootLoadError: the entry document could not be loaded at all
//   - ResourceLimitError: include depth or document size limits exceeded
//   - ConfigError: invalid options
//
// # Usage with errors.Is
//
//	result, err := flatten.FlattenWithOptions(ctx, flatten.WithFilePath("api.raml"))
//	if errors.Is(err, flaterrors.ErrRootLoad) {
//	    // nothing could be produced
//	}
//	var refErr *flaterrors.ReferenceError
//	if errors.As(err, &refErr) && refErr.IsCircular {
//	    // cyclic resourceType, trait, or include chain
//	}
package flaterrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates a referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates structured content could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a cyclic include, resourceType, or trait chain.
	ErrCircularReference = errors.New("circular reference")

	// ErrUnregisteredReference indicates a resourceType or trait name that is not declared.
	ErrUnregisteredReference = errors.New("unregistered reference")

	// ErrPathTraversal indicates a path traversal attempt was blocked.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrRootLoad indicates the entry document could not be loaded.
	ErrRootLoad = errors.New("root document load failed")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// NotFoundError reports a document identifier that the source could not find.
type NotFoundError struct {
	// ID is the resolved document identifier
	ID string
	// Cause is the underlying error, if any (e.g. fs.ErrNotExist)
	Cause error
}

// Error returns a human-readable error message.
func (e *NotFoundError) Error() string {
	msg := "not found"
	if e.ID != "" {
		msg += ": " + e.ID
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ParseError represents malformed structured content.
type ParseError struct {
	// ID is the document identifier
	ID string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.ID != "" {
		msg += " in " + e.ID
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve an include, resourceType, or trait.
type ReferenceError struct {
	// Ref is the reference that failed (document id or template/trait name)
	Ref string
	// RefType indicates the reference type: "include", "resourceType", or "trait"
	RefType string
	// Chain is the resolution chain leading to a cycle, outermost first
	Chain []string
	// IsCircular is true if this error is due to a cyclic reference
	IsCircular bool
	// IsUnregistered is true if the name is not declared in its registry
	IsUnregistered bool
	// IsPathTraversal is true if this error is due to a path traversal attempt
	IsPathTraversal bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	switch {
	case e.IsCircular:
		msg = "circular reference"
	case e.IsUnregistered:
		msg = "unregistered reference"
	case e.IsPathTraversal:
		msg = "path traversal detected"
	}
	if e.RefType != "" {
		msg += " (" + e.RefType + ")"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if len(e.Chain) > 0 {
		msg += " [" + strings.Join(e.Chain, " -> ") + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference, ErrUnregisteredReference,
// or ErrPathTraversal when the matching flag is set.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrReference:
		return true
	case ErrCircularReference:
		return e.IsCircular
	case ErrUnregisteredReference:
		return e.IsUnregistered
	case ErrPathTraversal:
		return e.IsPathTraversal
	}
	return false
}

// RootLoadError reports that the entry document could not be loaded, so no
// output can be produced.
type RootLoadError struct {
	// ID is the entry document identifier
	ID string
	// Message provides additional context
	Message string
	// Cause is the underlying error (often a NotFoundError or ParseError)
	Cause error
}

// Error returns a human-readable error message.
func (e *RootLoadError) Error() string {
	msg := "root document load failed"
	if e.ID != "" {
		msg += ": " + e.ID
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *RootLoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *RootLoadError) Is(target error) bool {
	return target == ErrRootLoad
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "include_depth", "document_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
