// Package loader reads include-based API description documents into a
// single tree.
//
// Documents are YAML (RAML documents are YAML). A scalar tagged !include
// names another document, resolved against the directory of the document
// that contains the tag:
//
//	types:
//	  User: !include types/user.raml
//	  Sample: !include examples/user.json
//
// The target replaces the tagged scalar before Load returns:
//
//   - .raml, .yaml, and .yml targets are loaded recursively, so their own
//     includes resolve relative to their own location
//   - .json targets are parsed as JSON, keeping key order
//   - any other target is spliced in as raw text
//
// Loading is best effort. A missing target leaves a null in place, and a
// target that fails to parse is spliced in as raw text; both are reported
// as flaterrors.Diagnostic values on the returned Document. Only a failure
// to load the entry document, a cyclic or too deep include chain, or a
// cancelled context is returned as an error.
//
// Every document is fetched once per Loader through a source.Cache. With
// WithConcurrency, the includes of one document are loaded in parallel and
// spliced in declaration order, so the result does not depend on fetch
// completion order.
package loader
