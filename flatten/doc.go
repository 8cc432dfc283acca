// Package flatten turns a loaded API description into a flat list of
// endpoints and a schema map.
//
// # Quick Start
//
// Flatten a document and everything it includes:
//
//	result, err := flatten.FlattenWithOptions(ctx,
//	    flatten.WithFilePath("api.raml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ep := range result.Endpoints() {
//	    fmt.Println(ep.Method, ep.Path)
//	}
//
// Or flatten an already loaded tree:
//
//	result, err := flatten.New().Flatten(doc.Root)
//
// # Paths
//
// Every top-level key beginning with "/" is a resource. Nested "/" keys
// are child resources whose path is the parent path followed by the key,
// joined without inserting or removing slashes. Method keys (get, post,
// put, patch, delete, head, options, trace, connect) become endpoints.
// Other keys are ignored.
//
// # Inheritance
//
// A resource's type names resourceTypes whose fields are inherited; the
// resource's own fields win. A method's is list names traits merged in
// order, later traits winning and the method's own fields winning over
// all of them. Traits listed on the resource itself are ignored unless
// Flattener.ResourceTraits (or WithResourceTraits) is set, in which case
// they apply to each of its methods before the method's own traits.
//
// # Output
//
// Each endpoint keeps only its parameters (queryParameters, falling back to
// parameters) and responses. Each declared type with a mapping body becomes
// a schema of {properties, examples}; a singular example is promoted to
// examples.default.value when no default exists. Result.MarshalOrderedJSON
// and Result.MarshalOrderedYAML write {paths, schemas} in declaration order.
//
// Names that are not registered are skipped and reported in
// Result.Diagnostics. A resourceType that inherits from itself, directly or
// through other types, is an error.
package flatten
