package compare

import (
	"strings"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/tree"
)

// Update returns a copy of target, a parsed OpenAPI document, brought in
// line with result:
//
//   - every flattened schema is written to components.schemas, as a new
//     {type: object, properties} entry or by replacing the properties of
//     an existing entry
//   - examples keys are removed from component schemas, where OpenAPI 3.0
//     does not allow them
//   - a response whose application/json schema is a $ref to a flattened
//     schema with examples gets those examples
//   - missing paths, methods, and query parameters are added, so a
//     following Compare reports none of them
//
// target is not modified.
func Update(result *flatten.Result, target *tree.Map) *tree.Map {
	doc := target.Clone()
	if doc == nil {
		doc = tree.New()
	}

	schemas := ensureMap(ensureMap(doc, "components"), flatten.KeySchemas)
	schemas.Range(func(_ string, v any) bool {
		if def, ok := v.(*tree.Map); ok {
			def.Delete(flatten.KeyExamples)
		}
		return true
	})
	result.Schemas.Range(func(name string, v any) bool {
		properties := ownedProperties(v)
		if def, ok := schemas.Get(name); ok {
			if def, ok := def.(*tree.Map); ok {
				def.Set(flatten.KeyProperties, properties)
				return true
			}
		}
		def := tree.NewWithCapacity(2)
		def.Set("type", "object")
		def.Set(flatten.KeyProperties, properties)
		schemas.Set(name, def)
		return true
	})

	paths := ensureMap(doc, flatten.KeyPaths)
	addEndpoints(result, paths)
	addResponseExamples(result.Schemas, paths)
	return doc
}

// addEndpoints adds the paths, methods, and query parameters of result that
// paths lacks. New parameters are string-typed.
func addEndpoints(result *flatten.Result, paths *tree.Map) {
	for _, ep := range result.Endpoints() {
		item := ensureMap(paths, ep.Path)
		op := item.GetMap(ep.Method)
		if op == nil {
			op = tree.NewWithCapacity(2)
			op.Set(flatten.KeyResponses, tree.New())
			op.Set(flatten.KeyParameters, []any{})
			item.Set(ep.Method, op)
		}

		declared := queryParams(item)
		for name := range queryParams(op) {
			declared[name] = true
		}
		list, _ := op.Get(flatten.KeyParameters)
		params, _ := list.([]any)
		added := false
		ep.Parameters.Range(func(name string, v any) bool {
			if declared[name] {
				return true
			}
			description, _ := asMap(v).GetString("description")
			schema := tree.NewWithCapacity(1)
			schema.Set("type", "string")
			p := tree.NewWithCapacity(4)
			p.Set("name", name)
			p.Set("in", "query")
			p.Set("description", description)
			p.Set("schema", schema)
			params = append(params, p)
			added = true
			return true
		})
		if added {
			op.Set(flatten.KeyParameters, params)
		}
	}
}

// addResponseExamples copies a schema's examples to each response whose
// application/json schema references it.
func addResponseExamples(schemas, paths *tree.Map) {
	paths.Range(func(_ string, v any) bool {
		asMap(v).Range(func(_ string, v any) bool {
			asMap(v).GetMap(flatten.KeyResponses).Range(func(_ string, v any) bool {
				media := asMap(v).GetMap("content").GetMap("application/json")
				ref, ok := media.GetMap("schema").GetString("$ref")
				if !ok {
					return true
				}
				name := ref[strings.LastIndex(ref, "/")+1:]
				examples := schemas.GetMap(name).GetMap(flatten.KeyExamples)
				if examples.Len() > 0 {
					media.Set(flatten.KeyExamples, examples.Clone())
				}
				return true
			})
			return true
		})
		return true
	})
}

// ensureMap returns the mapping at key, replacing any other value with an
// empty mapping.
func ensureMap(m *tree.Map, key string) *tree.Map {
	if child := m.GetMap(key); child != nil {
		return child
	}
	child := tree.New()
	m.Set(key, child)
	return child
}

func ownedProperties(schema any) *tree.Map {
	if properties := asMap(schema).GetMap(flatten.KeyProperties); properties != nil {
		return properties.Clone()
	}
	return tree.New()
}

func asMap(v any) *tree.Map {
	m, _ := v.(*tree.Map)
	return m
}
