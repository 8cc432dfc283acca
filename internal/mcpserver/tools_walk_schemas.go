package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/internal/pathutil"
	"github.com/erraggy/specflat/tree"
)

type walkSchemasInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The entry document to walk"`
	Name   string    `json:"name,omitempty"   jsonschema:"Filter by schema name (supports * glob)"`
	Detail bool      `json:"detail,omitempty" jsonschema:"Return full schemas instead of summaries"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of results to return (default 100)"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N results (for pagination)"`
}

type schemaSummary struct {
	Name       string   `json:"name"`
	Properties []string `json:"properties,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

type schemaDetail struct {
	Name   string    `json:"name"`
	Schema *tree.Map `json:"schema"`
}

type walkSchemasOutput struct {
	Total     int             `json:"total"`
	Matched   int             `json:"matched"`
	Returned  int             `json:"returned"`
	Summaries []schemaSummary `json:"summaries,omitempty"`
	Schemas   []schemaDetail  `json:"schemas,omitempty"`
}

func handleWalkSchemas(ctx context.Context, _ *mcp.CallToolRequest, input walkSchemasInput) (*mcp.CallToolResult, any, error) {
	if err := pathutil.ValidatePattern(input.Name); err != nil {
		return errResult(err), nil, nil
	}

	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), nil, nil
	}

	var matched []string
	for _, name := range result.Schemas.Keys() {
		if pathutil.MatchName(input.Name, name) {
			matched = append(matched, name)
		}
	}

	returned := paginate(matched, input.Offset, input.Limit)
	output := walkSchemasOutput{
		Total:    result.Schemas.Len(),
		Matched:  len(matched),
		Returned: len(returned),
	}
	if input.Detail {
		output.Schemas = makeSlice[schemaDetail](len(returned))
		for _, name := range returned {
			output.Schemas = append(output.Schemas, schemaDetail{
				Name:   name,
				Schema: result.Schemas.GetMap(name),
			})
		}
	} else {
		output.Summaries = makeSlice[schemaSummary](len(returned))
		for _, name := range returned {
			schema := result.Schemas.GetMap(name)
			output.Summaries = append(output.Summaries, schemaSummary{
				Name:       name,
				Properties: schema.GetMap(flatten.KeyProperties).Keys(),
				Examples:   schema.GetMap(flatten.KeyExamples).Keys(),
			})
		}
	}
	return nil, output, nil
}
