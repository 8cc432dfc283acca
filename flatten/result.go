package flatten

import (
	"slices"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/tree"
)

// DocumentStats contains statistical information about a flattened document
type DocumentStats struct {
	PathCount       int // Number of distinct paths
	OperationCount  int // Number of distinct (path, method) endpoints
	ResourceCount   int // Number of resource nodes walked
	SchemaCount     int // Number of extracted schemas
	ResourceTypes   int // Number of declared resourceTypes
	Traits          int // Number of declared traits
	DocumentCount   int // Number of documents loaded, entry included
	DiagnosticCount int // Number of degraded includes and references
}

// Result is a flattened document.
type Result struct {
	// SourcePath is the identifier of the entry document, if any
	SourcePath string
	// Paths maps path -> method -> {parameters, responses}
	Paths *tree.Map
	// Schemas maps type name -> {properties, examples}
	Schemas *tree.Map
	// Diagnostics lists degraded includes, then unresolved references, each
	// in traversal order
	Diagnostics []flaterrors.Diagnostic
	// ResourceTypes lists the declared resourceType names in declaration order
	ResourceTypes []string
	// Traits lists the declared trait names in declaration order
	Traits []string
	// Documents lists the identifiers of every document loaded
	Documents []string
	// Stats summarizes the result
	Stats DocumentStats
}

// Endpoints returns the endpoints in emission order.
func (r *Result) Endpoints() []Endpoint {
	var out []Endpoint
	r.Paths.Range(func(path string, v any) bool {
		methods, _ := v.(*tree.Map)
		methods.Range(func(method string, v any) bool {
			entry, _ := v.(*tree.Map)
			out = append(out, Endpoint{
				Path:       path,
				Method:     method,
				Parameters: entry.GetMap(KeyParameters),
				Responses:  entry.GetMap(KeyResponses),
			})
			return true
		})
		return true
	})
	return out
}

// Endpoint returns the endpoint for path and method.
func (r *Result) Endpoint(path, method string) (Endpoint, bool) {
	entry := r.Paths.GetMap(path).GetMap(method)
	if entry == nil {
		return Endpoint{}, false
	}
	return Endpoint{
		Path:       path,
		Method:     method,
		Parameters: entry.GetMap(KeyParameters),
		Responses:  entry.GetMap(KeyResponses),
	}, true
}

// Dependencies returns Documents followed by the identifiers of include
// targets that could not be read. A change to any of them can change the
// result.
func (r *Result) Dependencies() []string {
	deps := slices.Clone(r.Documents)
	for _, d := range r.Diagnostics {
		if d.ID != "" && !slices.Contains(deps, d.ID) {
			deps = append(deps, d.ID)
		}
	}
	return deps
}

// Output returns {paths, schemas}, the serializable form of the result.
func (r *Result) Output() *tree.Map {
	out := tree.NewWithCapacity(2)
	out.Set(KeyPaths, orEmpty(r.Paths))
	out.Set(KeySchemas, orEmpty(r.Schemas))
	return out
}

// HasDiagnostics reports whether anything was degraded or skipped.
func (r *Result) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// MarshalOrderedJSON returns Output as JSON in declaration order.
func (r *Result) MarshalOrderedJSON() ([]byte, error) {
	return r.Output().MarshalJSON()
}

// MarshalOrderedJSONIndent returns Output as indented JSON in declaration order.
func (r *Result) MarshalOrderedJSONIndent(prefix, indent string) ([]byte, error) {
	return tree.MarshalJSONIndent(r.Output(), prefix, indent)
}

// MarshalOrderedYAML returns Output as YAML in declaration order.
func (r *Result) MarshalOrderedYAML() ([]byte, error) {
	return tree.MarshalYAML(r.Output())
}

func orEmpty(m *tree.Map) *tree.Map {
	if m == nil {
		return tree.New()
	}
	return m
}
