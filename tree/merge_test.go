package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		overlay  map[string]any
		expected map[string]any
	}{
		{
			name:     "disjoint keys union",
			base:     map[string]any{"a": 1},
			overlay:  map[string]any{"b": 2},
			expected: map[string]any{"a": 1, "b": 2},
		},
		{
			name:     "scalar overlay wins",
			base:     map[string]any{"a": 1},
			overlay:  map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name:     "nested mappings merge recursively",
			base:     map[string]any{"get": map[string]any{"responses": map[string]any{"200": "B", "404": "C"}}},
			overlay:  map[string]any{"get": map[string]any{"responses": map[string]any{"200": "A"}}},
			expected: map[string]any{"get": map[string]any{"responses": map[string]any{"200": "A", "404": "C"}}},
		},
		{
			name:     "sequences replaced wholesale",
			base:     map[string]any{"is": []any{"secured", "paged"}},
			overlay:  map[string]any{"is": []any{"cached"}},
			expected: map[string]any{"is": []any{"cached"}},
		},
		{
			name:     "mapping replaced by scalar",
			base:     map[string]any{"body": map[string]any{"type": "User"}},
			overlay:  map[string]any{"body": "User"},
			expected: map[string]any{"body": "User"},
		},
		{
			name:     "scalar replaced by mapping",
			base:     map[string]any{"body": "User"},
			overlay:  map[string]any{"body": map[string]any{"type": "User"}},
			expected: map[string]any{"body": map[string]any{"type": "User"}},
		},
		{
			name:     "nil overlay value replaces mapping",
			base:     map[string]any{"get": map[string]any{"description": "x"}},
			overlay:  map[string]any{"get": nil},
			expected: map[string]any{"get": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := FromMap(tt.base)
			got := Merge(base, FromMap(tt.overlay))
			assert.Same(t, base, got, "Merge must return its base argument")
			assert.True(t, Equal(FromMap(tt.expected), got), "got %v", got.ToMap())
		})
	}
}

func TestMergeNilArguments(t *testing.T) {
	overlay := FromMap(map[string]any{"a": 1})

	got := Merge(nil, overlay)
	require.NotNil(t, got)
	assert.True(t, Equal(overlay, got))

	base := FromMap(map[string]any{"b": 2})
	assert.Same(t, base, Merge(base, nil))
}

func TestMergeLeftToRight(t *testing.T) {
	a := FromMap(map[string]any{"r": map[string]any{"200": "a", "401": "a"}, "x": []any{1}})
	b := FromMap(map[string]any{"r": map[string]any{"200": "b"}, "x": []any{2, 3}})
	c := FromMap(map[string]any{"r": map[string]any{"401": "c", "500": "c"}})

	nested := Merge(Merge(a.Clone(), b.Clone()), c.Clone())

	sequential := New()
	for _, m := range []*Map{a, b, c} {
		Merge(sequential, m.Clone())
	}

	expected := FromMap(map[string]any{
		"r": map[string]any{"200": "b", "401": "c", "500": "c"},
		"x": []any{2, 3},
	})
	assert.True(t, Equal(expected, nested))
	assert.True(t, Equal(expected, sequential))
}

func TestMergeKeepsBaseOrder(t *testing.T) {
	base := New()
	base.Set("get", New())
	base.Set("post", New())

	overlay := New()
	overlay.Set("delete", New())
	overlay.Set("get", FromMap(map[string]any{"description": "list"}))

	Merge(base, overlay)
	assert.Equal(t, []string{"get", "post", "delete"}, base.Keys())
}

func TestCloneIsDeep(t *testing.T) {
	orig := FromMap(map[string]any{
		"get": map[string]any{"responses": map[string]any{"200": "ok"}},
		"seq": []any{map[string]any{"a": 1}},
	})
	cp := orig.Clone()

	Merge(cp, FromMap(map[string]any{"get": map[string]any{"responses": map[string]any{"500": "err"}}}))
	cp.GetMap("get").Set("description", "changed")
	seq, _ := cp.Get("seq")
	seq.([]any)[0].(*Map).Set("a", 2)

	assert.False(t, orig.GetMap("get").GetMap("responses").Has("500"))
	assert.False(t, orig.GetMap("get").Has("description"))
	origSeq, _ := orig.Get("seq")
	v, _ := origSeq.([]any)[0].(*Map).Get("a")
	assert.Equal(t, 1, v)
}

func TestEqual(t *testing.T) {
	a := New()
	a.Set("x", 1)
	a.Set("y", []any{"a"})
	b := New()
	b.Set("y", []any{"a"})
	b.Set("x", 1)

	assert.True(t, Equal(a, b), "key order is ignored")
	assert.False(t, Equal(a, FromMap(map[string]any{"x": 1})))
	assert.False(t, Equal(a, "x"))
	assert.False(t, Equal([]any{1}, []any{1, 2}))
	assert.True(t, Equal(nil, nil))
}
