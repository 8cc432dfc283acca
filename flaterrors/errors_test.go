package flaterrors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &NotFoundError{ID: "/api/types/user.raml", Cause: fs.ErrNotExist}
		assert.Equal(t, "not found: /api/types/user.raml: file does not exist", err.Error())
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		assert.Equal(t, "not found", (&NotFoundError{}).Error())
	})

	t.Run("Is matches ErrNotFound and cause", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", &NotFoundError{ID: "x", Cause: fs.ErrNotExist})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.NotErrorIs(t, err, ErrParse)
	})
}

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ParseError{ID: "api.raml", Line: 4, Message: "invalid mapping", Cause: errors.New("boom")}
		assert.Equal(t, "parse error in api.raml at line 4: invalid mapping: boom", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ParseError{Cause: cause}
		assert.Same(t, cause, err.Unwrap())
	})

	t.Run("Is matches ErrParse only", func(t *testing.T) {
		err := &ParseError{}
		assert.ErrorIs(t, err, ErrParse)
		assert.NotErrorIs(t, err, ErrReference)
	})
}

func TestReferenceError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ReferenceError
		message string
		matches []error
		misses  []error
	}{
		{
			name:    "circular",
			err:     &ReferenceError{Ref: "collection", RefType: "resourceType", IsCircular: true, Chain: []string{"collection", "base", "collection"}},
			message: "circular reference (resourceType): collection [collection -> base -> collection]",
			matches: []error{ErrReference, ErrCircularReference},
			misses:  []error{ErrUnregisteredReference, ErrPathTraversal},
		},
		{
			name:    "unregistered",
			err:     &ReferenceError{Ref: "paged", RefType: "trait", IsUnregistered: true},
			message: "unregistered reference (trait): paged",
			matches: []error{ErrReference, ErrUnregisteredReference},
			misses:  []error{ErrCircularReference},
		},
		{
			name:    "path traversal",
			err:     &ReferenceError{Ref: "../../etc/passwd", RefType: "include", IsPathTraversal: true},
			message: "path traversal detected (include): ../../etc/passwd",
			matches: []error{ErrReference, ErrPathTraversal},
			misses:  []error{ErrCircularReference, ErrUnregisteredReference},
		},
		{
			name:    "plain",
			err:     &ReferenceError{Message: "bad"},
			message: "reference error: bad",
			matches: []error{ErrReference},
			misses:  []error{ErrCircularReference},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			for _, target := range tt.matches {
				assert.ErrorIs(t, tt.err, target)
			}
			for _, target := range tt.misses {
				assert.NotErrorIs(t, tt.err, target)
			}
		})
	}
}

func TestRootLoadError(t *testing.T) {
	cause := &NotFoundError{ID: "api.raml"}
	err := fmt.Errorf("flatten: %w", &RootLoadError{ID: "api.raml", Cause: cause})

	assert.ErrorIs(t, err, ErrRootLoad)
	assert.ErrorIs(t, err, ErrNotFound)

	var rootErr *RootLoadError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, "api.raml", rootErr.ID)
	assert.Equal(t, "root document load failed: api.raml: not found: api.raml", rootErr.Error())
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "include_depth", Limit: 64, Actual: 65, Message: "includes nested too deeply"}
	assert.Equal(t, "resource limit exceeded: include_depth (limit: 64, actual: 65): includes nested too deeply", err.Error())
	assert.ErrorIs(t, err, ErrResourceLimit)
	assert.Equal(t, "resource limit exceeded", (&ResourceLimitError{}).Error())
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "concurrency", Value: -1, Message: "must be positive"}
	assert.Equal(t, "configuration error for concurrency (value: -1): must be positive", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
	assert.NotErrorIs(t, err, ErrParse)
}
