package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specflat/compare"
	"github.com/erraggy/specflat/tree"
)

// targetInput is the OpenAPI document to compare against.
// Exactly one of File or Content must be set.
type targetInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OpenAPI document on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline OpenAPI document content (JSON or YAML)"`
}

type compareInput struct {
	Spec   specInput   `json:"spec"   jsonschema:"The entry document to flatten"`
	Target targetInput `json:"target" jsonschema:"The OpenAPI document to compare against"`
}

type compareOutput struct {
	HasDiscrepancies bool            `json:"has_discrepancies"`
	Count            int             `json:"count"`
	Discrepancies    []string        `json:"discrepancies,omitempty"`
	Report           *compare.Report `json:"report"`
}

func handleCompare(ctx context.Context, _ *mcp.CallToolRequest, input compareInput) (*mcp.CallToolResult, compareOutput, error) {
	target, err := input.Target.load(ctx)
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}
	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), compareOutput{}, nil
	}

	report := compare.Compare(result, target)
	output := compareOutput{
		HasDiscrepancies: report.HasDiscrepancies(),
		Count:            report.Count(),
		Discrepancies:    makeSlice[string](report.Count()),
		Report:           report,
	}
	for _, d := range report.All() {
		output.Discrepancies = append(output.Discrepancies, d.String())
	}
	return nil, output, nil
}

func (t targetInput) load(ctx context.Context) (*tree.Map, error) {
	switch {
	case t.File != "" && t.Content != "":
		return nil, fmt.Errorf("exactly one of target file or content must be provided (got 2)")
	case t.File != "":
		return compare.LoadTarget(ctx, t.File)
	case t.Content != "":
		if int64(len(t.Content)) > cfg.MaxInlineSize {
			return nil, fmt.Errorf("inline target size %d bytes exceeds maximum %d bytes", len(t.Content), cfg.MaxInlineSize)
		}
		return compare.ParseTarget(ctx, []byte(t.Content))
	default:
		return nil, fmt.Errorf("exactly one of target file or content must be provided (got 0)")
	}
}
