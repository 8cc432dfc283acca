package flatten

import (
	"slices"
	"strings"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/internal/httputil"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/resolver"
	"github.com/erraggy/specflat/tree"
)

// Output keys.
const (
	KeyPaths       = "paths"
	KeySchemas     = "schemas"
	KeyParameters  = "parameters"
	KeyResponses   = "responses"
	KeyProperties  = "properties"
	KeyExamples    = "examples"
	KeyExample     = "example"
	KeyValue       = "value"
	KeyDefault     = "default"
	keyQueryParams = "queryParameters"
)

// Endpoint is one flattened (path, method) pair.
type Endpoint struct {
	Path       string
	Method     string
	Parameters *tree.Map
	Responses  *tree.Map
}

// Flattener walks a loaded document and emits its endpoints and schemas.
type Flattener struct {
	// Methods lists the method keys that produce endpoints.
	// If empty, httputil.Methods is used.
	Methods []string
	// ResourceTraits applies the traits a resource lists in its own is key
	// to every method of the resource, before the method's own traits.
	// If false, only method-level is lists are applied.
	ResourceTraits bool
	// Logger is the structured logger. If nil, logging is disabled.
	Logger loader.Logger
}

// New creates a Flattener with default settings.
func New() *Flattener {
	return &Flattener{}
}

// Flatten resolves and flattens root. root is not modified.
//
// Every top-level key starting with "/" is a resource. Each resource has
// its resourceType inheritance applied; its method keys emit endpoints with
// their own traits applied, and its "/" keys are walked with the path extended
// by plain concatenation. Siblings are visited in declaration order.
//
// Unregistered resourceType and trait names are reported in
// Result.Diagnostics. The only error is a cyclic resourceType chain.
func (f *Flattener) Flatten(root *tree.Map) (*Result, error) {
	logger := f.Logger
	if logger == nil {
		logger = loader.NopLogger{}
	}
	methods := f.Methods
	if len(methods) == 0 {
		methods = httputil.Methods
	}

	reg := resolver.NewRegistry(root)
	w := &walker{
		res:            resolver.New(reg, resolver.WithLogger(logger)),
		methods:        methods,
		resourceTraits: f.ResourceTraits,
		logger:         logger,
		paths:          tree.New(),
	}
	for _, key := range root.Keys() {
		if !strings.HasPrefix(key, "/") {
			continue
		}
		v, _ := root.Get(key)
		if err := w.walk(key, asMap(v)); err != nil {
			return nil, err
		}
	}

	schemas := ExtractSchemas(reg.Types())
	result := &Result{
		Paths:         w.paths,
		Schemas:       schemas,
		ResourceTypes: reg.ResourceTypeNames(),
		Traits:        reg.TraitNames(),
		Diagnostics:   w.diags,
	}
	result.Stats = DocumentStats{
		PathCount:       w.paths.Len(),
		OperationCount:  w.endpoints,
		ResourceCount:   w.resources,
		SchemaCount:     schemas.Len(),
		ResourceTypes:   len(result.ResourceTypes),
		Traits:          len(result.Traits),
		DiagnosticCount: len(w.diags),
	}
	logger.Debug("flattened",
		"paths", result.Stats.PathCount,
		"operations", result.Stats.OperationCount,
		"schemas", result.Stats.SchemaCount)
	return result, nil
}

type walker struct {
	res            *resolver.Resolver
	methods        []string
	resourceTraits bool
	logger         loader.Logger

	paths     *tree.Map
	diags     []flaterrors.Diagnostic
	resources int
	endpoints int
}

func (w *walker) walk(path string, node *tree.Map) error {
	w.resources++
	resource, err := w.res.ResolveResource(node)
	if err != nil {
		return err
	}
	w.drain(path)

	for _, key := range resource.Keys() {
		v, _ := resource.Get(key)
		switch {
		case slices.Contains(w.methods, key):
			method, err := w.resolveMethod(resource, asMap(v))
			if err != nil {
				return err
			}
			w.drain(path + " " + key)
			w.emit(path, key, method)
		case strings.HasPrefix(key, "/"):
			if err := w.walk(path+key, asMap(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) resolveMethod(resource, method *tree.Map) (*tree.Map, error) {
	if w.resourceTraits {
		return w.res.ResolveResourceMethod(resource, method)
	}
	return w.res.ResolveMethod(method)
}

// drain moves the resolver's diagnostics to the walker, locating them at from.
func (w *walker) drain(from string) {
	for _, d := range w.res.Diagnostics() {
		d.From = from
		w.diags = append(w.diags, d)
	}
}

// emit records the endpoint. A later endpoint with the same path and method
// replaces the earlier one in place.
func (w *walker) emit(path, method string, node *tree.Map) {
	params := node.GetMap(keyQueryParams)
	if params == nil {
		params = node.GetMap(KeyParameters)
	}
	entry := tree.NewWithCapacity(2)
	entry.Set(KeyParameters, ownedMap(params))
	entry.Set(KeyResponses, ownedMap(node.GetMap(KeyResponses)))

	methods := w.paths.GetMap(path)
	if methods == nil {
		methods = tree.New()
		w.paths.Set(path, methods)
	}
	if !methods.Has(method) {
		w.endpoints++
	}
	methods.Set(method, entry)
	w.logger.Debug("endpoint emitted", "path", path, "method", method)
}

// ownedMap returns a deep copy of m, or an empty map.
func ownedMap(m *tree.Map) *tree.Map {
	if m == nil {
		return tree.New()
	}
	return m.Clone()
}

// asMap returns v as a mapping. Anything else, including null, is empty.
func asMap(v any) *tree.Map {
	if m, ok := v.(*tree.Map); ok {
		return m
	}
	return tree.New()
}
