// Package specflat resolves RAML-style API descriptions into a flat list of
// endpoints and schemas.
//
// A description is a YAML document that may pull in other files with
// !include, share behavior through resourceTypes and traits, and nest
// resources by path. specflat loads the document and everything it
// includes, applies resourceType inheritance and traits, and emits one
// entry per (path, method) pair together with the schemas declared under
// types.
//
// # Overview
//
// The library is split into small packages, each usable on its own:
//
//   - tree: ordered mappings and the deep merge used for inheritance
//   - source: readers for local files, http(s) URLs, and fs.FS trees
//   - loader: YAML decoding with !include resolution
//   - resolver: resourceType and trait application
//   - flatten: path walking, endpoint emission, and schema extraction
//   - compare: reports what an OpenAPI document is missing, and updates it
//
// # Installation
//
//	go get github.com/erraggy/specflat
//
// # Quick Start
//
// Flatten a document:
//
//	import "github.com/erraggy/specflat/flatten"
//
//	result, err := flatten.FlattenWithOptions(ctx,
//		flatten.WithFilePath("api.raml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, ep := range result.Endpoints() {
//		fmt.Println(ep.Method, ep.Path)
//	}
//
// Compare it with an OpenAPI document:
//
//	import "github.com/erraggy/specflat/compare"
//
//	target, err := compare.LoadTarget(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	report := compare.Compare(result, target)
//	for _, d := range report.All() {
//		fmt.Println(d)
//	}
//
// # Includes
//
// An !include value is replaced by the target document. Targets are
// resolved relative to the including document. YAML and JSON targets are
// parsed; anything else is kept as text. A target that cannot be read
// becomes null and is reported as a diagnostic, so one missing example
// file does not fail the whole document. Cyclic includes are errors.
//
// Remote includes from local documents are disabled unless requested with
// flatten.WithResolveHTTP.
//
// # Errors and Diagnostics
//
// Failures that prevent a result, such as an unreadable entry document or
// a cyclic resourceType chain, are returned as errors from the flaterrors
// package and can be matched with errors.Is and errors.As. Degraded
// includes and unregistered resourceType or trait names are collected in
// Result.Diagnostics instead.
//
// # Command Line
//
// The specflat command wraps these packages:
//
//	specflat flatten api.raml
//	specflat endpoints -method get api.raml
//	specflat schemas -name 'User*' api.raml
//	specflat compare api.raml openapi.yaml
//	specflat update -w api.raml openapi.yaml
//	specflat mcp
//
// See the package documentation of each subpackage for details.
package specflat
