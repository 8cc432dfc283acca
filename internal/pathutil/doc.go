// Package pathutil matches flattened endpoint paths and schema names
// against glob patterns.
//
// Patterns use doublestar syntax restricted to wildcards: "*" matches
// within one path segment and "**" across segments. Braces and brackets
// are literal so that templated segments such as "{id}" can be matched
// as written:
//
//	pathutil.MatchPath("/users/*", "/users/{id}")         // true
//	pathutil.MatchPath("/users/**", "/users/{id}/orders") // true
//	pathutil.MatchPath("/users/{id}", "/users/{id}")      // true
package pathutil
