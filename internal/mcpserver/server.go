// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes specflat capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specflat"
)

const serverInstructions = `specflat MCP server. Flattens include-based RAML/YAML API descriptions (with !include, resourceTypes, and traits) into endpoints and schemas, and compares them with OpenAPI documents.

Configuration: All defaults are configurable via SPECFLAT_* environment variables set in your MCP client config.

Key settings:
- SPECFLAT_WALK_LIMIT (default: 100) - default result limit for walk tools
- SPECFLAT_MAX_LIMIT (default: 1000) - maximum result limit for walk tools
- SPECFLAT_CONCURRENCY (default: 4) - sibling includes loaded in parallel
- SPECFLAT_RESOLVE_HTTP (default: false) - allow local documents to include http(s) URLs
- SPECFLAT_CACHE_ENABLED (default: true) - disable result caching entirely

Caching: Flattened results are cached per session. An entry is invalidated as soon as any local document it was built from changes, includes included. URL entries expire after SPECFLAT_CACHE_URL_TTL.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		resultCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "specflat", Version: specflat.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "flatten",
		Description: "Flatten an include-based API description. Resolves !include tags, applies resourceType inheritance and traits, and returns a summary: path, endpoint, resource, schema, and document counts plus any diagnostics (missing includes, unregistered names). Use full=true only for small documents; for large documents use walk_endpoints and walk_schemas.",
	}, handleFlatten)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_endpoints",
		Description: "Walk and query the flattened endpoints of an API description. Filter by method or path pattern. Returns summaries (method, path, parameter names, response codes) by default or full parameters and responses with detail=true. Path patterns support * (one segment) and ** (zero or more segments), e.g. /users/** matches all paths under /users. Use group_by (method or segment) to get distribution counts instead of individual items.",
	}, handleWalkEndpoints)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_schemas",
		Description: "Walk and query the schemas extracted from an API description's types. Filter by name glob (e.g. User*). Returns summaries (name, property names, example names) by default or full schemas with detail=true.",
	}, handleWalkSchemas)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare",
		Description: "Compare a flattened API description against an OpenAPI document. Reports paths, methods, and query parameters missing from the OpenAPI document, and endpoints whose 200 application/json response has no example there.",
	}, handleCompare)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.WalkLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.WalkLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is a valid value and is not combined with detail.
func validateGroupBy(groupBy string, detail bool, allowed []string) error {
	if groupBy == "" {
		return nil
	}
	if detail {
		return fmt.Errorf("cannot use both group_by and detail")
	}
	for _, a := range allowed {
		if strings.EqualFold(groupBy, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

func errInvalidFormat(format string) error {
	return fmt.Errorf("invalid format %q; valid values: yaml, json", format)
}

func errUnknownMethod(method string) error {
	return fmt.Errorf("unknown method %q", method)
}
