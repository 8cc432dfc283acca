package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/specflat"
	"github.com/erraggy/specflat/cmd/specflat/commands"
	"github.com/erraggy/specflat/internal/mcpserver"
)

// commandNames lists every subcommand, for typo suggestions.
var commandNames = []string{"flatten", "endpoints", "schemas", "compare", "update", "mcp", "version", "help"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run dispatches args to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	var err error
	switch command := args[0]; command {
	case "version", "-v", "--version":
		fmt.Println("specflat")
		fmt.Println(specflat.BuildInfo())
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "flatten":
		err = commands.HandleFlatten(ctx, args[1:])
	case "endpoints":
		err = commands.HandleEndpoints(ctx, args[1:])
	case "schemas":
		err = commands.HandleSchemas(ctx, args[1:])
	case "compare":
		err = commands.HandleCompare(ctx, args[1:])
	case "update":
		err = commands.HandleUpdate(ctx, args[1:])
	case "mcp":
		err = mcpserver.Run(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		return 1
	}

	if err != nil {
		if !errors.Is(err, commands.ErrDiscrepancies) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the closest command name within edit distance 2,
// or "" if none is close enough.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`specflat - RAML include, resource type, and trait flattener

Usage:
  specflat <command> [options]

Commands:
  flatten     Resolve a document and output its flattened paths and schemas
  endpoints   List the flattened endpoints of a document
  schemas     List the schemas extracted from a document's types
  compare     Report what an OpenAPI document is missing relative to a document
  update      Add a document's schemas, examples, and endpoints to an OpenAPI document
  mcp         Start the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  specflat flatten api.raml
  specflat flatten -format json -o flat.json api.raml
  specflat endpoints -method get api.raml
  specflat compare api.raml openapi.yaml
  specflat update -w api.raml openapi.yaml

Run 'specflat <command> --help' for more information on a command.`)
}
