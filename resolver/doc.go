// Package resolver applies resourceType inheritance and trait composition.
//
// A Registry captures the resourceTypes, traits, and types declared at the
// root of a loaded document. A Resolver uses it to expand resource and
// method nodes:
//
//	reg := resolver.NewRegistry(doc.Root)
//	r := resolver.New(reg)
//	resource, err := r.ResolveResource(doc.Root.GetMap("/users"))
//	method, err := r.ResolveResourceMethod(resource, resource.GetMap("get"))
//
// Composition uses tree.Merge: the node's own fields always win over what
// it inherits, later types and traits in a list win over earlier ones, and
// only mappings are merged deeply.
//
// Names that are not declared contribute nothing; they are recorded and
// returned by Diagnostics. A resourceType that inherits from itself,
// directly or through other types, fails with a *flaterrors.ReferenceError
// with IsCircular set.
package resolver
