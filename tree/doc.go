// Package tree provides the ordered document tree shared by the loader,
// resolver, and flattener.
//
// A parsed document is a recursive value: a scalar, a sequence ([]any), or a
// [Map]. Map remembers declaration order so that flattening visits sibling
// resources deterministically and output keeps the author's ordering.
//
// # Deep Merge
//
// [Merge] implements the one composition rule everything else builds on:
// for each overlay key, two mappings merge recursively and anything else is
// replaced by the overlay value.
//
//	base := tree.FromMap(map[string]any{"get": map[string]any{"responses": map[string]any{"200": "B", "404": "C"}}})
//	node := tree.FromMap(map[string]any{"get": map[string]any{"responses": map[string]any{"200": "A"}}})
//	tree.Merge(base, node) // get.responses == {200: A, 404: C}
//
// Merge mutates its first argument. Callers that must preserve a value,
// such as a registry template, merge into a [Map.Clone] instead.
package tree
