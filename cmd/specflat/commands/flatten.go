package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/internal/fileutil"
	"github.com/erraggy/specflat/internal/httputil"
	"github.com/erraggy/specflat/internal/watch"
)

// FlattenFlags contains flags for the flatten command
type FlattenFlags struct {
	Format  string
	Output  string
	Watch   bool
	Quiet   bool
	Methods string
	Load    LoadFlags
}

// SetupFlattenFlags creates and configures a FlagSet for the flatten command.
// Returns the FlagSet and a FlattenFlags struct with bound flag variables.
func SetupFlattenFlags() (*flag.FlagSet, *FlattenFlags) {
	fs := flag.NewFlagSet("flatten", flag.ContinueOnError)
	flags := &FlattenFlags{}

	fs.StringVar(&flags.Format, "format", FormatYAML, "output format: yaml or json")
	fs.StringVar(&flags.Output, "o", "", "write output to file instead of stdout")
	fs.StringVar(&flags.Methods, "methods", "", "comma-separated methods to emit (default: all)")
	fs.BoolVar(&flags.Watch, "watch", false, "re-flatten whenever a loaded file changes (requires -o)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")
	flags.Load.Register(fs)

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: specflat flatten [flags] <file|url|->\n\n")
		Writef(output, "Resolve includes, resource types, and traits, and output {paths, schemas}.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  specflat flatten api.raml\n")
		Writef(output, "  specflat flatten -format json -o flat.json api.raml\n")
		Writef(output, "  specflat flatten -watch -o flat.yaml api.raml\n")
		Writef(output, "  specflat flatten -methods get,post api.raml\n")
		Writef(output, "  cat api.raml | specflat flatten -q -\n")
		Writef(output, "\nRemote Includes:\n")
		Writef(output, "  --resolve-http lets local documents include http(s) URLs.\n")
		Writef(output, "  This is disabled by default so a document cannot make specflat fetch arbitrary URLs.\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    Flattening successful (diagnostics are warnings)\n")
		Writef(output, "  1    The document could not be flattened\n")
	}

	return fs, flags
}

// HandleFlatten executes the flatten command
func HandleFlatten(ctx context.Context, args []string) error {
	fs, flags := SetupFlattenFlags()
	if err := parseArgs(fs, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("flatten command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format, FormatYAML, FormatJSON); err != nil {
		return err
	}
	specPath := fs.Arg(0)

	var extra []flatten.Option
	if flags.Methods != "" {
		methods, unknown := httputil.ParseMethods(flags.Methods)
		if len(unknown) > 0 {
			return fmt.Errorf("unknown methods: %s", strings.Join(unknown, ", "))
		}
		extra = append(extra, flatten.WithMethods(methods...))
	}

	if flags.Output != "" {
		if err := ValidateOutputPath(flags.Output, []string{specPath}); err != nil {
			return err
		}
	}
	if flags.Watch {
		if flags.Output == "" {
			return fmt.Errorf("-watch requires -o")
		}
		if specPath == StdinFilePath {
			return fmt.Errorf("-watch cannot be used with stdin")
		}
		return watch.Run(ctx, specPath, func(ctx context.Context) ([]string, error) {
			result, err := runFlatten(ctx, specPath, flags, extra...)
			if err != nil {
				return nil, err
			}
			return result.Dependencies(), nil
		}, watch.WithLogger(flags.Load.Logger()))
	}

	_, err := runFlatten(ctx, specPath, flags, extra...)
	return err
}

// runFlatten flattens specPath once and writes the result.
func runFlatten(ctx context.Context, specPath string, flags *FlattenFlags, extra ...flatten.Option) (*flatten.Result, error) {
	result, err := flags.Load.Flatten(ctx, specPath, extra...)
	if err != nil {
		return nil, fmt.Errorf("flattening %s: %w", FormatSpecPath(specPath), err)
	}

	var data []byte
	if flags.Format == FormatJSON {
		data, err = result.MarshalOrderedJSONIndent("", "  ")
		data = append(data, '\n')
	} else {
		data, err = result.MarshalOrderedYAML()
	}
	if err != nil {
		return nil, fmt.Errorf("marshaling output: %w", err)
	}

	if flags.Output != "" {
		if err := fileutil.WriteAtomic(flags.Output, data, fileutil.OwnerReadWrite); err != nil {
			return nil, fmt.Errorf("writing output file: %w", err)
		}
	} else if _, err := stdout.Write(data); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	if !flags.Quiet {
		Writef(stderr, "Document: %s\n", FormatSpecPath(specPath))
		Writef(stderr, "Documents loaded: %d\n", result.Stats.DocumentCount)
		Writef(stderr, "Paths: %d\n", result.Stats.PathCount)
		Writef(stderr, "Endpoints: %d\n", result.Stats.OperationCount)
		Writef(stderr, "Schemas: %d\n", result.Stats.SchemaCount)
		Writef(stderr, "Resource types: %d\n", result.Stats.ResourceTypes)
		Writef(stderr, "Traits: %d\n", result.Stats.Traits)
		printDiagnostics(result)
		if flags.Output != "" {
			Writef(stderr, "Output written to: %s\n", flags.Output)
		}
	}
	return result, nil
}
