package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
	"github.com/erraggy/specflat/tree"
)

// Category indicates what a discrepancy is missing from the target
type Category string

const (
	// CategoryPath indicates a flattened path absent from the target
	CategoryPath Category = "path"
	// CategoryMethod indicates a method absent from a target path
	CategoryMethod Category = "method"
	// CategoryParameter indicates a query parameter absent from a target operation
	CategoryParameter Category = "parameter"
	// CategoryExample indicates a 200 response example absent from a target operation
	CategoryExample Category = "example"
)

// Discrepancy is one thing the flattened document has that the target lacks.
type Discrepancy struct {
	Category  Category `json:"-" yaml:"-"`
	Path      string   `json:"path" yaml:"path"`
	Method    string   `json:"method,omitempty" yaml:"method,omitempty"`
	Parameter string   `json:"parameter,omitempty" yaml:"parameter,omitempty"`
}

// String returns a human-readable description of the discrepancy
func (d Discrepancy) String() string {
	method := strings.ToUpper(d.Method)
	switch d.Category {
	case CategoryPath:
		return fmt.Sprintf("Missing path %s", d.Path)
	case CategoryMethod:
		return fmt.Sprintf("Missing method %s for path %s", method, d.Path)
	case CategoryParameter:
		return fmt.Sprintf("Missing parameter in %s %s: %s", method, d.Path, d.Parameter)
	case CategoryExample:
		return fmt.Sprintf("Missing 200 response example in %s %s", method, d.Path)
	default:
		return fmt.Sprintf("%s %s %s", d.Category, method, d.Path)
	}
}

// Report lists what a target OpenAPI document is missing, each list in the
// flattened document's emission order.
type Report struct {
	MissingPaths      []Discrepancy `json:"missing_paths" yaml:"missing_paths"`
	MissingMethods    []Discrepancy `json:"missing_methods" yaml:"missing_methods"`
	MissingParameters []Discrepancy `json:"missing_parameters" yaml:"missing_parameters"`
	MissingExamples   []Discrepancy `json:"missing_examples" yaml:"missing_examples"`
}

// HasDiscrepancies reports whether anything is missing.
func (r *Report) HasDiscrepancies() bool {
	return r.Count() > 0
}

// Count returns the total number of discrepancies.
func (r *Report) Count() int {
	return len(r.MissingPaths) + len(r.MissingMethods) + len(r.MissingParameters) + len(r.MissingExamples)
}

// All returns every discrepancy: paths, then methods, parameters, and examples.
func (r *Report) All() []Discrepancy {
	out := make([]Discrepancy, 0, r.Count())
	out = append(out, r.MissingPaths...)
	out = append(out, r.MissingMethods...)
	out = append(out, r.MissingParameters...)
	return append(out, r.MissingExamples...)
}

// Compare checks every endpoint of result against target, a parsed OpenAPI
// document.
//
// A path absent from target.paths is reported once. For a present path, an
// absent method is reported; for a present operation, each flattened
// parameter not declared with in: query on the operation or its path item
// is reported, and a flattened 200 response is reported when the target's
// 200 application/json content has neither example nor examples.
func Compare(result *flatten.Result, target *tree.Map) *Report {
	report := &Report{
		MissingPaths:      []Discrepancy{},
		MissingMethods:    []Discrepancy{},
		MissingParameters: []Discrepancy{},
		MissingExamples:   []Discrepancy{},
	}
	paths := target.GetMap("paths")

	reported := make(map[string]bool)
	for _, ep := range result.Endpoints() {
		item := paths.GetMap(ep.Path)
		if !paths.Has(ep.Path) {
			if !reported[ep.Path] {
				reported[ep.Path] = true
				report.MissingPaths = append(report.MissingPaths, Discrepancy{Category: CategoryPath, Path: ep.Path})
			}
			continue
		}
		if !item.Has(ep.Method) {
			report.MissingMethods = append(report.MissingMethods, Discrepancy{
				Category: CategoryMethod,
				Path:     ep.Path,
				Method:   ep.Method,
			})
			continue
		}
		op := item.GetMap(ep.Method)

		declared := queryParams(item)
		for name := range queryParams(op) {
			declared[name] = true
		}
		for _, name := range ep.Parameters.Keys() {
			if !declared[name] {
				report.MissingParameters = append(report.MissingParameters, Discrepancy{
					Category:  CategoryParameter,
					Path:      ep.Path,
					Method:    ep.Method,
					Parameter: name,
				})
			}
		}

		if ep.Responses.Has("200") && !hasExample(op) {
			report.MissingExamples = append(report.MissingExamples, Discrepancy{
				Category: CategoryExample,
				Path:     ep.Path,
				Method:   ep.Method,
			})
		}
	}
	return report
}

// queryParams returns the names of the in: query parameters node declares.
func queryParams(node *tree.Map) map[string]bool {
	names := make(map[string]bool)
	list, _ := node.Get("parameters")
	items, _ := list.([]any)
	for _, item := range items {
		p, ok := item.(*tree.Map)
		if !ok {
			continue
		}
		in, _ := p.GetString("in")
		name, _ := p.GetString("name")
		if in == "query" && name != "" {
			names[name] = true
		}
	}
	return names
}

func hasExample(op *tree.Map) bool {
	media := op.GetMap("responses").GetMap("200").GetMap("content").GetMap("application/json")
	return media.Has("example") || media.Has("examples")
}

// LoadTarget reads an OpenAPI document in YAML or JSON from a local path.
func LoadTarget(ctx context.Context, path string) (*tree.Map, error) {
	l, err := loader.New(&source.FileSource{})
	if err != nil {
		return nil, err
	}
	doc, err := l.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	return doc.Root, nil
}

// ParseTarget reads an OpenAPI document in YAML or JSON from data.
func ParseTarget(ctx context.Context, data []byte) (*tree.Map, error) {
	l, err := loader.New(&source.FileSource{})
	if err != nil {
		return nil, err
	}
	doc, err := l.LoadBytes(ctx, "", data)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	return doc.Root, nil
}
