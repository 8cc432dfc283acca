package flatten

import (
	"github.com/erraggy/specflat/tree"
)

// ExtractSchemas builds the schema map from declared types.
//
// Each entry becomes {properties, examples}. Missing properties or examples
// become empty mappings; entries are kept even when both are empty. A
// singular example is promoted to examples.default = {value: example}
// unless a default example already exists. Declarations that are not
// mappings, such as `Name: string`, are skipped.
//
// types is not modified.
func ExtractSchemas(types *tree.Map) *tree.Map {
	schemas := tree.NewWithCapacity(types.Len())
	types.Range(func(name string, v any) bool {
		decl, ok := v.(*tree.Map)
		if !ok {
			return true
		}
		schemas.Set(name, extractSchema(decl))
		return true
	})
	return schemas
}

func extractSchema(decl *tree.Map) *tree.Map {
	examples := ownedMap(decl.GetMap(KeyExamples))
	if example, ok := decl.Get(KeyExample); ok && !examples.Has(KeyDefault) {
		promoted := tree.NewWithCapacity(1)
		promoted.Set(KeyValue, tree.Copy(example))
		examples.Set(KeyDefault, promoted)
	}

	schema := tree.NewWithCapacity(2)
	schema.Set(KeyProperties, ownedMap(decl.GetMap(KeyProperties)))
	schema.Set(KeyExamples, examples)
	return schema
}
