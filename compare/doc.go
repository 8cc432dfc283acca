// Package compare checks a flattened document against an OpenAPI document
// and reports what the OpenAPI document is missing: paths, methods, query
// parameters, and 200 response examples.
//
//	report := compare.Compare(result, target)
//	for _, d := range report.All() {
//	    fmt.Println(d)
//	}
//
// Discrepancies are listed in the flattened document's emission order.
//
// Update returns a copy of the OpenAPI document with the flattened schemas,
// response examples, and missing endpoints added:
//
//	updated := compare.Update(result, target)
package compare
