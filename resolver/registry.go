package resolver

import (
	"github.com/erraggy/specflat/tree"
)

// Root keys holding the named declarations.
const (
	KeyResourceTypes = "resourceTypes"
	KeyTraits        = "traits"
	KeyTypes         = "types"
)

// Registry holds the named resourceTypes, traits, and types declared at the
// root of a document. It is immutable after construction: it owns deep
// copies of the declarations and hands out only copies.
type Registry struct {
	resourceTypes *tree.Map
	traits        *tree.Map
	types         *tree.Map
}

// NewRegistry captures the declarations of root. Missing or non-mapping
// sections yield empty tables. Sections written as a sequence of
// single-entry mappings are flattened in order, later names replacing
// earlier ones.
func NewRegistry(root *tree.Map) *Registry {
	return &Registry{
		resourceTypes: section(root, KeyResourceTypes),
		traits:        section(root, KeyTraits),
		types:         section(root, KeyTypes),
	}
}

func section(root *tree.Map, key string) *tree.Map {
	v, _ := root.Get(key)
	switch v := v.(type) {
	case *tree.Map:
		return v.Clone()
	case []any:
		out := tree.New()
		for _, item := range v {
			if m, ok := item.(*tree.Map); ok {
				m.Range(func(name string, decl any) bool {
					out.Set(name, tree.Copy(decl))
					return true
				})
			}
		}
		return out
	}
	return tree.New()
}

// ResourceTypeNames lists the declared resourceType names in declaration order.
func (r *Registry) ResourceTypeNames() []string {
	return r.resourceTypes.Keys()
}

// TraitNames lists the declared trait names in declaration order.
func (r *Registry) TraitNames() []string {
	return r.traits.Keys()
}

// Types returns a copy of the declared types.
func (r *Registry) Types() *tree.Map {
	return r.types.Clone()
}
