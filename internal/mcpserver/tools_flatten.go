package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type flattenInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The entry document to flatten"`
	Full   bool      `json:"full,omitempty"   jsonschema:"Return the full flattened output instead of a summary"`
	Format string    `json:"format,omitempty" jsonschema:"Format of the full output: yaml (default) or json"`
}

type flattenOutput struct {
	Source         string   `json:"source,omitempty"`
	PathCount      int      `json:"path_count"`
	OperationCount int      `json:"operation_count"`
	ResourceCount  int      `json:"resource_count"`
	SchemaCount    int      `json:"schema_count"`
	DocumentCount  int      `json:"document_count"`
	ResourceTypes  []string `json:"resource_types,omitempty"`
	Traits         []string `json:"traits,omitempty"`
	Diagnostics    []string `json:"diagnostics,omitempty"`
	FullOutput     string   `json:"full_output,omitempty"`
}

func handleFlatten(ctx context.Context, _ *mcp.CallToolRequest, input flattenInput) (*mcp.CallToolResult, flattenOutput, error) {
	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), flattenOutput{}, nil
	}

	output := flattenOutput{
		Source:         sanitizePath(result.SourcePath),
		PathCount:      result.Stats.PathCount,
		OperationCount: result.Stats.OperationCount,
		ResourceCount:  result.Stats.ResourceCount,
		SchemaCount:    result.Stats.SchemaCount,
		DocumentCount:  result.Stats.DocumentCount,
		ResourceTypes:  result.ResourceTypes,
		Traits:         result.Traits,
		Diagnostics:    makeSlice[string](len(result.Diagnostics)),
	}
	for _, d := range result.Diagnostics {
		output.Diagnostics = append(output.Diagnostics, sanitizePath(d.String()))
	}

	if input.Full {
		var data []byte
		switch input.Format {
		case "json":
			data, err = result.MarshalOrderedJSONIndent("", "  ")
		case "", "yaml":
			data, err = result.MarshalOrderedYAML()
		default:
			return errResult(errInvalidFormat(input.Format)), flattenOutput{}, nil
		}
		if err != nil {
			return errResult(err), flattenOutput{}, nil
		}
		output.FullOutput = string(data)
	}

	return nil, output, nil
}

// sanitizePath strips absolute filesystem paths from s.
func sanitizePath(s string) string {
	return pathPattern.ReplaceAllString(s, "<path>")
}
