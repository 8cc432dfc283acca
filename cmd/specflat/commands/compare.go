package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/specflat/compare"
)

// ErrDiscrepancies is returned by HandleCompare when the OpenAPI document
// is missing anything. The report has already been written.
var ErrDiscrepancies = errors.New("discrepancies found")

// CompareFlags contains flags for the compare command
type CompareFlags struct {
	Format string
	Quiet  bool
	Load   LoadFlags
}

// SetupCompareFlags creates and configures a FlagSet for the compare command.
func SetupCompareFlags() (*flag.FlagSet, *CompareFlags) {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	flags := &CompareFlags{}

	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no diagnostic messages")
	flags.Load.Register(fs)

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: specflat compare [flags] <file|url|-> <openapi.yaml>\n\n")
		Writef(output, "Report paths, methods, query parameters, and 200 response examples\n")
		Writef(output, "that the OpenAPI document is missing.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  specflat compare api.raml openapi.yaml\n")
		Writef(output, "  specflat compare -format json api.raml openapi.yaml > comparison.json\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    No discrepancies\n")
		Writef(output, "  1    Discrepancies found, or either document could not be read\n")
	}

	return fs, flags
}

// HandleCompare executes the compare command
func HandleCompare(ctx context.Context, args []string) error {
	fs, flags := SetupCompareFlags()
	if err := parseArgs(fs, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("compare command requires a document and an OpenAPI document")
	}
	if err := ValidateOutputFormat(flags.Format, FormatText, FormatJSON, FormatYAML); err != nil {
		return err
	}

	target, err := compare.LoadTarget(ctx, fs.Arg(1))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(1), err)
	}
	result, err := flags.Load.Flatten(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("flattening %s: %w", FormatSpecPath(fs.Arg(0)), err)
	}
	if !flags.Quiet {
		printDiagnostics(result)
	}

	report := compare.Compare(result, target)
	if flags.Format != FormatText {
		if err := OutputStructured(stdout, report, flags.Format); err != nil {
			return err
		}
	} else {
		for _, d := range report.All() {
			Writef(stdout, "%s\n", d)
		}
	}

	if report.HasDiscrepancies() {
		if !flags.Quiet {
			Writef(stderr, "Discrepancies found: %d\n", report.Count())
		}
		return ErrDiscrepancies
	}
	if !flags.Quiet {
		Writef(stderr, "No discrepancies found.\n")
	}
	return nil
}
