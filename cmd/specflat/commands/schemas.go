package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/internal/pathutil"
	"github.com/erraggy/specflat/tree"
)

// SchemasFlags contains flags for the schemas command
type SchemasFlags struct {
	Name   string
	Format string
	Quiet  bool
	Load   LoadFlags
}

// SetupSchemasFlags creates and configures a FlagSet for the schemas command.
func SetupSchemasFlags() (*flag.FlagSet, *SchemasFlags) {
	fs := flag.NewFlagSet("schemas", flag.ContinueOnError)
	flags := &SchemasFlags{}

	fs.StringVar(&flags.Name, "name", "", "only list schemas whose name matches this glob")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no diagnostic messages")
	flags.Load.Register(fs)

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: specflat schemas [flags] <file|url|->\n\n")
		Writef(output, "List the schemas extracted from a document's types.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  specflat schemas api.raml\n")
		Writef(output, "  specflat schemas -name 'User*' -format yaml api.raml\n")
	}

	return fs, flags
}

// HandleSchemas executes the schemas command
func HandleSchemas(ctx context.Context, args []string) error {
	fs, flags := SetupSchemasFlags()
	if err := parseArgs(fs, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("schemas command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format, FormatText, FormatJSON, FormatYAML); err != nil {
		return err
	}
	if err := pathutil.ValidatePattern(flags.Name); err != nil {
		return err
	}

	result, err := flags.Load.Flatten(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("flattening %s: %w", FormatSpecPath(fs.Arg(0)), err)
	}
	if !flags.Quiet {
		printDiagnostics(result)
	}

	selected := tree.New()
	result.Schemas.Range(func(name string, v any) bool {
		if pathutil.MatchName(flags.Name, name) {
			selected.Set(name, v)
		}
		return true
	})

	switch flags.Format {
	case FormatJSON:
		data, err := tree.MarshalJSONIndent(selected, "", "  ")
		if err != nil {
			return err
		}
		Writef(stdout, "%s\n", data)
	case FormatYAML:
		data, err := tree.MarshalYAML(selected)
		if err != nil {
			return err
		}
		Writef(stdout, "%s", data)
	default:
		selected.Range(func(name string, v any) bool {
			schema, _ := v.(*tree.Map)
			Writef(stdout, "%s (%d properties, %d examples)\n", name,
				schema.GetMap(flatten.KeyProperties).Len(),
				schema.GetMap(flatten.KeyExamples).Len())
			return true
		})
	}
	return nil
}
