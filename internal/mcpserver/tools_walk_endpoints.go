package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/internal/httputil"
	"github.com/erraggy/specflat/internal/pathutil"
	"github.com/erraggy/specflat/tree"
)

type walkEndpointsInput struct {
	Spec    specInput `json:"spec"               jsonschema:"The entry document to walk"`
	Method  string    `json:"method,omitempty"   jsonschema:"Filter by HTTP method (get\\, post\\, put\\, delete\\, patch\\, etc.)"`
	Path    string    `json:"path,omitempty"     jsonschema:"Filter by path pattern (supports * and ** glob)"`
	Detail  bool      `json:"detail,omitempty"   jsonschema:"Return full parameters and responses instead of summaries"`
	GroupBy string    `json:"group_by,omitempty" jsonschema:"Group results and return counts instead of items: method or segment"`
	Limit   int       `json:"limit,omitempty"    jsonschema:"Maximum number of results to return (default 100)"`
	Offset  int       `json:"offset,omitempty"   jsonschema:"Skip the first N results (for pagination)"`
}

type endpointSummary struct {
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	Parameters []string `json:"parameters,omitempty"`
	Responses  []string `json:"responses,omitempty"`
}

type endpointDetail struct {
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Parameters *tree.Map `json:"parameters"`
	Responses  *tree.Map `json:"responses"`
}

type walkEndpointsOutput struct {
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
	Returned  int               `json:"returned"`
	Summaries []endpointSummary `json:"summaries,omitempty"`
	Endpoints []endpointDetail  `json:"endpoints,omitempty"`
	Groups    []groupCount      `json:"groups,omitempty"`
}

var endpointGroupBy = []string{"method", "segment"}

func handleWalkEndpoints(ctx context.Context, _ *mcp.CallToolRequest, input walkEndpointsInput) (*mcp.CallToolResult, any, error) {
	if err := validateGroupBy(input.GroupBy, input.Detail, endpointGroupBy); err != nil {
		return errResult(err), nil, nil
	}
	if err := pathutil.ValidatePattern(input.Path); err != nil {
		return errResult(err), nil, nil
	}
	method := strings.ToLower(input.Method)
	if method != "" && !httputil.IsMethod(method) {
		return errResult(errUnknownMethod(input.Method)), nil, nil
	}

	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), nil, nil
	}

	all := result.Endpoints()
	var matched []flatten.Endpoint
	for _, ep := range all {
		if method != "" && ep.Method != method {
			continue
		}
		if !pathutil.MatchPath(input.Path, ep.Path) {
			continue
		}
		matched = append(matched, ep)
	}

	output := walkEndpointsOutput{
		Total:   len(all),
		Matched: len(matched),
	}

	if input.GroupBy != "" {
		output.Groups = groupAndSort(matched, func(ep flatten.Endpoint) []string {
			if strings.EqualFold(input.GroupBy, "method") {
				return []string{strings.ToUpper(ep.Method)}
			}
			return []string{firstSegment(ep.Path)}
		})
		output.Returned = len(output.Groups)
		return nil, output, nil
	}

	returned := paginate(matched, input.Offset, input.Limit)
	output.Returned = len(returned)
	if input.Detail {
		output.Endpoints = makeSlice[endpointDetail](len(returned))
		for _, ep := range returned {
			output.Endpoints = append(output.Endpoints, endpointDetail{
				Method:     strings.ToUpper(ep.Method),
				Path:       ep.Path,
				Parameters: ep.Parameters,
				Responses:  ep.Responses,
			})
		}
	} else {
		output.Summaries = makeSlice[endpointSummary](len(returned))
		for _, ep := range returned {
			output.Summaries = append(output.Summaries, endpointSummary{
				Method:     strings.ToUpper(ep.Method),
				Path:       ep.Path,
				Parameters: ep.Parameters.Keys(),
				Responses:  ep.Responses.Keys(),
			})
		}
	}
	return nil, output, nil
}

// firstSegment returns the first segment of path with its leading slash,
// e.g. "/users" for "/users/{id}/orders".
func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
