package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/erraggy/specflat/internal/httputil"
	"github.com/erraggy/specflat/internal/pathutil"
	"github.com/erraggy/specflat/tree"
)

// EndpointsFlags contains flags for the endpoints command
type EndpointsFlags struct {
	Method string
	Path   string
	Format string
	Quiet  bool
	Load   LoadFlags
}

// SetupEndpointsFlags creates and configures a FlagSet for the endpoints command.
func SetupEndpointsFlags() (*flag.FlagSet, *EndpointsFlags) {
	fs := flag.NewFlagSet("endpoints", flag.ContinueOnError)
	flags := &EndpointsFlags{}

	fs.StringVar(&flags.Method, "method", "", "only list endpoints with this method")
	fs.StringVar(&flags.Path, "path", "", "only list paths matching this glob (* one segment, ** any)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no diagnostic messages")
	flags.Load.Register(fs)

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: specflat endpoints [flags] <file|url|->\n\n")
		Writef(output, "List the flattened endpoints of a document.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  specflat endpoints api.raml\n")
		Writef(output, "  specflat endpoints -method get -path '/users/**' api.raml\n")
		Writef(output, "  specflat endpoints -format json api.raml\n")
	}

	return fs, flags
}

type endpointRecord struct {
	Method     string    `json:"method"     yaml:"method"`
	Path       string    `json:"path"       yaml:"path"`
	Parameters *tree.Map `json:"parameters" yaml:"parameters"`
	Responses  *tree.Map `json:"responses"  yaml:"responses"`
}

// HandleEndpoints executes the endpoints command
func HandleEndpoints(ctx context.Context, args []string) error {
	fs, flags := SetupEndpointsFlags()
	if err := parseArgs(fs, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("endpoints command requires exactly one file path, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format, FormatText, FormatJSON, FormatYAML); err != nil {
		return err
	}
	method := strings.ToLower(flags.Method)
	if method != "" && !httputil.IsMethod(method) {
		return fmt.Errorf("unknown method %q", flags.Method)
	}
	if err := pathutil.ValidatePattern(flags.Path); err != nil {
		return err
	}

	result, err := flags.Load.Flatten(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("flattening %s: %w", FormatSpecPath(fs.Arg(0)), err)
	}
	if !flags.Quiet {
		printDiagnostics(result)
	}

	records := []endpointRecord{}
	for _, ep := range result.Endpoints() {
		if method != "" && ep.Method != method {
			continue
		}
		if !pathutil.MatchPath(flags.Path, ep.Path) {
			continue
		}
		records = append(records, endpointRecord{
			Method:     ep.Method,
			Path:       ep.Path,
			Parameters: ep.Parameters,
			Responses:  ep.Responses,
		})
	}

	if flags.Format != FormatText {
		return OutputStructured(stdout, records, flags.Format)
	}
	for _, r := range records {
		Writef(stdout, "%-7s %s", strings.ToUpper(r.Method), r.Path)
		if params := r.Parameters.Keys(); len(params) > 0 {
			Writef(stdout, "  ?%s", strings.Join(params, "&"))
		}
		if codes := r.Responses.Keys(); len(codes) > 0 {
			Writef(stdout, "  -> %s", strings.Join(codes, ","))
		}
		Writef(stdout, "\n")
	}
	return nil
}
