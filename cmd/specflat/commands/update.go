package commands

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/erraggy/specflat/compare"
	"github.com/erraggy/specflat/internal/fileutil"
	"github.com/erraggy/specflat/tree"
)

// UpdateFlags contains flags for the update command
type UpdateFlags struct {
	Format  string
	Output  string
	InPlace bool
	Quiet   bool
	Load    LoadFlags
}

// SetupUpdateFlags creates and configures a FlagSet for the update command.
func SetupUpdateFlags() (*flag.FlagSet, *UpdateFlags) {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	flags := &UpdateFlags{}

	fs.StringVar(&flags.Format, "format", "", "output format: yaml or json (default: from the OpenAPI file extension)")
	fs.StringVar(&flags.Output, "o", "", "write output to file instead of stdout")
	fs.BoolVar(&flags.InPlace, "w", false, "write output back to the OpenAPI file")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	flags.Load.Register(fs)

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: specflat update [flags] <file|url|-> <openapi.yaml>\n\n")
		Writef(output, "Add the flattened schemas, response examples, paths, methods, and query\n")
		Writef(output, "parameters to an OpenAPI document, and remove examples from its schemas.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  specflat update api.raml openapi.yaml > updated.yaml\n")
		Writef(output, "  specflat update -o updated.json api.raml openapi.yaml\n")
		Writef(output, "  specflat update -w api.raml openapi.yaml\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    Update successful\n")
		Writef(output, "  1    Either document could not be read, or the output could not be written\n")
	}

	return fs, flags
}

// HandleUpdate executes the update command
func HandleUpdate(ctx context.Context, args []string) error {
	fs, flags := SetupUpdateFlags()
	if err := parseArgs(fs, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("update command requires a document and an OpenAPI document")
	}
	specPath, targetPath := fs.Arg(0), fs.Arg(1)

	output := flags.Output
	switch {
	case flags.InPlace && output != "":
		return fmt.Errorf("-w and -o cannot be used together")
	case flags.InPlace:
		output = targetPath
		if err := RejectSymlinkOutput(filepath.Clean(output)); err != nil {
			return err
		}
	case output != "":
		if err := ValidateOutputPath(output, []string{specPath, targetPath}); err != nil {
			return err
		}
	}

	format := flags.Format
	if format == "" {
		format = formatFromPath(output, targetPath)
	}
	if err := ValidateOutputFormat(format, FormatYAML, FormatJSON); err != nil {
		return err
	}

	target, err := compare.LoadTarget(ctx, targetPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", targetPath, err)
	}
	result, err := flags.Load.Flatten(ctx, specPath)
	if err != nil {
		return fmt.Errorf("flattening %s: %w", FormatSpecPath(specPath), err)
	}

	updated := compare.Update(result, target)
	var data []byte
	if format == FormatJSON {
		data, err = tree.MarshalJSONIndent(updated, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = tree.MarshalYAML(updated)
	}
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	if output != "" {
		if err := fileutil.WriteAtomic(output, data, fileutil.OwnerReadWrite); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !flags.Quiet {
		Writef(stderr, "Document: %s\n", FormatSpecPath(specPath))
		Writef(stderr, "Schemas: %d\n", result.Stats.SchemaCount)
		Writef(stderr, "Endpoints: %d\n", result.Stats.OperationCount)
		printDiagnostics(result)
		if output != "" {
			Writef(stderr, "Output written to: %s\n", output)
		}
	}
	return nil
}

// formatFromPath picks JSON for a .json output, or for a .json target when
// writing to stdout, and YAML otherwise.
func formatFromPath(output, target string) string {
	path := output
	if path == "" {
		path = target
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}
