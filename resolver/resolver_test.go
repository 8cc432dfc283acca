package resolver

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
	"github.com/erraggy/specflat/tree"
)

// parse loads a YAML document without includes.
func parse(t *testing.T, text string) *tree.Map {
	t.Helper()
	l, err := loader.New(&source.FSSource{FS: fstest.MapFS{}})
	require.NoError(t, err)
	doc, err := l.LoadBytes(context.Background(), "", []byte(text))
	require.NoError(t, err)
	return doc.Root
}

func responses(t *testing.T, node *tree.Map, method string) *tree.Map {
	t.Helper()
	m := node.GetMap(method)
	require.NotNil(t, m, "method %s missing", method)
	return m.GetMap("responses")
}

func TestResolveResourceInheritancePrecedence(t *testing.T) {
	root := parse(t, `
resourceTypes:
  T:
    get:
      responses:
        200: B
        404: C
/items:
  type: T
  get:
    responses:
      200: A
`)
	r := New(NewRegistry(root))

	got, err := r.ResolveResource(root.GetMap("/items"))
	require.NoError(t, err)

	want := parse(t, "200: A\n404: C\n")
	assert.True(t, tree.Equal(want, responses(t, got, "get")))
	assert.Empty(t, r.Diagnostics())
}

func TestResolveResourceMultipleBases(t *testing.T) {
	root := parse(t, `
resourceTypes:
  X:
    get:
      responses:
        200: fromX
        500: onlyX
  Y:
    get:
      responses:
        200: fromY
/a:
  type: [X, Y]
/b:
  type: [X, Y]
  get:
    responses:
      200: own
`)
	r := New(NewRegistry(root))

	a, err := r.ResolveResource(root.GetMap("/a"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(parse(t, "200: fromY\n500: onlyX\n"), responses(t, a, "get")))

	b, err := r.ResolveResource(root.GetMap("/b"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(parse(t, "200: own\n500: onlyX\n"), responses(t, b, "get")))
}

func TestResolveResourceNestedTemplates(t *testing.T) {
	root := parse(t, `
resourceTypes:
  base:
    get:
      description: base
      responses:
        500: error
  collection:
    type: base
    get:
      responses:
        200: list
    post:
      responses:
        201: created
/users:
  type: { collection: { item: User } }
`)
	r := New(NewRegistry(root))

	got, err := r.ResolveResource(root.GetMap("/users"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(parse(t, "500: error\n200: list\n"), responses(t, got, "get")))
	assert.True(t, tree.Equal(parse(t, "201: created\n"), responses(t, got, "post")))
	desc, _ := got.GetMap("get").GetString("description")
	assert.Equal(t, "base", desc)
}

func TestResolveMethodTraitPrecedence(t *testing.T) {
	root := parse(t, `
traits:
  Secured:
    headers:
      Authorization: token
    responses:
      401: unauthorized
      200: secured
  Paged:
    responses:
      206: partial
      200: paged
`)
	r := New(NewRegistry(root))

	method := parse(t, "is: [Secured, Paged]\nresponses:\n  400: bad\n")
	got, err := r.ResolveMethod(method)
	require.NoError(t, err)

	want := parse(t, "401: unauthorized\n200: paged\n206: partial\n400: bad\n")
	assert.True(t, tree.Equal(want, got.GetMap("responses")))
	assert.NotNil(t, got.GetMap("headers"))

	t.Run("method fields win", func(t *testing.T) {
		got, err := r.ResolveMethod(parse(t, "is: [Secured]\nresponses:\n  401: mine\n"))
		require.NoError(t, err)
		v, _ := got.GetMap("responses").Get("401")
		assert.Equal(t, "mine", v)
	})

	t.Run("single trait as string", func(t *testing.T) {
		got, err := r.ResolveMethod(parse(t, "is: Paged\n"))
		require.NoError(t, err)
		assert.True(t, got.GetMap("responses").Has("206"))
	})
}

func TestResolveResourceMethodAppliesResourceTraits(t *testing.T) {
	root := parse(t, `
traits:
  audited:
    responses:
      200: audited
      403: forbidden
  cached:
    responses:
      200: cached
/reports:
  is: [audited]
  get:
    is: [cached]
`)
	r := New(NewRegistry(root))
	resource := root.GetMap("/reports")

	got, err := r.ResolveResourceMethod(resource, resource.GetMap("get"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(parse(t, "200: cached\n403: forbidden\n"), got.GetMap("responses")))
}

func TestEmptyRegistryIsNoOp(t *testing.T) {
	root := parse(t, `
/items:
  type: collection
  get:
    is: [secured]
    responses:
      200: ok
`)
	reg := NewRegistry(root)
	assert.Empty(t, reg.ResourceTypeNames())
	assert.Empty(t, reg.TraitNames())
	r := New(reg)

	resource := root.GetMap("/items")
	gotResource, err := r.ResolveResource(resource)
	require.NoError(t, err)
	assert.True(t, tree.Equal(resource, gotResource))

	method := resource.GetMap("get")
	gotMethod, err := r.ResolveMethod(method)
	require.NoError(t, err)
	assert.Same(t, method, gotMethod)

	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, flaterrors.KindUnregistered, diags[0].Kind)
	assert.Equal(t, "collection", diags[0].Ref)
	assert.ErrorIs(t, diags[0].Err, flaterrors.ErrUnregisteredReference)
	assert.Equal(t, "secured", diags[1].Ref)
	assert.Empty(t, r.Diagnostics(), "Diagnostics drains")
}

func TestUnregisteredNameInListContributesNothing(t *testing.T) {
	root := parse(t, `
resourceTypes:
  Y:
    get:
      responses:
        200: fromY
/a:
  type: [Missing, Y]
`)
	r := New(NewRegistry(root))

	got, err := r.ResolveResource(root.GetMap("/a"))
	require.NoError(t, err)
	assert.True(t, tree.Equal(parse(t, "200: fromY\n"), responses(t, got, "get")))

	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "Missing", diags[0].Ref)
}

func TestCyclicResourceTypes(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		chain []string
	}{
		{
			name:  "self",
			doc:   "resourceTypes:\n  A:\n    type: A\n/x:\n  type: A\n",
			chain: []string{"A", "A"},
		},
		{
			name:  "indirect",
			doc:   "resourceTypes:\n  A:\n    type: B\n  B:\n    type: [C]\n  C:\n    type: { A: {} }\n/x:\n  type: A\n",
			chain: []string{"A", "B", "C", "A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parse(t, tt.doc)
			_, err := New(NewRegistry(root)).ResolveResource(root.GetMap("/x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, flaterrors.ErrCircularReference)

			var refErr *flaterrors.ReferenceError
			require.True(t, errors.As(err, &refErr))
			assert.Equal(t, tt.chain, refErr.Chain)
		})
	}
}

func TestResolverDoesNotMutate(t *testing.T) {
	root := parse(t, `
resourceTypes:
  T:
    get:
      responses:
        200: B
        404: C
traits:
  S:
    responses:
      401: no
/items:
  type: T
  get:
    is: [S]
    responses:
      200: A
`)
	before := root.Clone()
	reg := NewRegistry(root)
	r := New(reg)

	resource, err := r.ResolveResource(root.GetMap("/items"))
	require.NoError(t, err)
	method, err := r.ResolveMethod(resource.GetMap("get"))
	require.NoError(t, err)

	// Scribble on the results; neither the input nor the registry may change.
	method.GetMap("responses").Set("999", "scribble")
	resource.GetMap("get").GetMap("responses").Set("998", "scribble")

	assert.True(t, tree.Equal(before, root))

	again, err := r.ResolveResource(root.GetMap("/items"))
	require.NoError(t, err)
	assert.False(t, again.GetMap("get").GetMap("responses").Has("998"))
	assert.Equal(t, []string{"T"}, reg.ResourceTypeNames())
}

func TestResolveIsIdempotent(t *testing.T) {
	root := parse(t, `
resourceTypes:
  T:
    get:
      responses:
        404: C
/items:
  type: T
  get:
    responses:
      200: A
`)
	r := New(NewRegistry(root))

	once, err := r.ResolveResource(root.GetMap("/items"))
	require.NoError(t, err)
	twice, err := r.ResolveResource(once)
	require.NoError(t, err)
	assert.True(t, tree.Equal(once, twice))

	resolvedDoc := parse(t, "/items:\n  get:\n    responses:\n      200: A\n")
	plain := resolvedDoc.GetMap("/items")
	got, err := r.ResolveResource(plain)
	require.NoError(t, err)
	assert.Same(t, plain, got)
}

func TestRegistryListForm(t *testing.T) {
	root := parse(t, `
traits:
  - secured:
      responses:
        401: no
  - paged:
      queryParameters:
        page: { type: integer }
resourceTypes:
  - collection:
      get: {}
types:
  User:
    properties:
      id: string
`)
	reg := NewRegistry(root)
	assert.Equal(t, []string{"secured", "paged"}, reg.TraitNames())
	assert.Equal(t, []string{"collection"}, reg.ResourceTypeNames())
	assert.Equal(t, []string{"User"}, reg.Types().Keys())

	r := New(reg)
	got, err := r.ResolveMethod(parse(t, "is: [secured, paged]\n"))
	require.NoError(t, err)
	assert.True(t, got.GetMap("queryParameters").Has("page"))
}

func TestNonMappingDeclarationIsReported(t *testing.T) {
	root := parse(t, `
traits:
  broken: just text
  empty:
/a:
  get:
    is: [broken, empty]
`)
	r := New(NewRegistry(root))
	method := root.GetMap("/a").GetMap("get")
	got, err := r.ResolveMethod(method)
	require.NoError(t, err)
	assert.Same(t, method, got)

	diags := r.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "broken", diags[0].Ref)
}
