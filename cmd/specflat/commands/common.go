// Package commands provides CLI command handlers for specflat.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/specflat"
	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// ValidateOutputFormat validates an output format against the formats a
// command accepts and returns an error if invalid.
func ValidateOutputFormat(format string, valid ...string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return fmt.Errorf("invalid format '%s'. Valid formats: %v", format, valid)
}

// OutputStructured writes data in the specified format (json or yaml).
// Returns an error if marshaling fails.
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes)
	return nil
}

// ValidateOutputPath checks if the output path is safe to write to
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		absInputPath, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}

		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}
	return RejectSymlinkOutput(filepath.Clean(outputPath))
}

// RejectSymlinkOutput checks if the output path is a symlink and returns an error if so.
// This prevents symlink attacks where a symlink could redirect output to an unintended location.
func RejectSymlinkOutput(cleanedPath string) error {
	info, err := os.Lstat(cleanedPath)
	if os.IsNotExist(err) {
		// File does not exist yet, safe to write.
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("commands: refusing to write to symlink: %s", cleanedPath)
	}
	return nil
}

// FormatSpecPath returns a display-friendly path for the document.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// LoadFlags are the flags shared by every command that flattens a document.
type LoadFlags struct {
	Concurrency     int
	ResolveHTTP     bool
	MaxIncludeDepth int
	RootDir         string
	ResourceTraits  bool
	Verbose         bool
	LogJSON         bool
}

// Register binds the load flags to fs.
func (f *LoadFlags) Register(fs *flag.FlagSet) {
	fs.IntVar(&f.Concurrency, "concurrency", 4, "number of sibling includes loaded in parallel")
	fs.BoolVar(&f.ResolveHTTP, "resolve-http", false, "allow local documents to include http(s) URLs")
	fs.IntVar(&f.MaxIncludeDepth, "max-depth", loader.DefaultMaxIncludeDepth, "maximum include nesting depth")
	fs.StringVar(&f.RootDir, "root", "", "confine local includes to this directory")
	fs.BoolVar(&f.ResourceTraits, "resource-traits", false, "apply a resource's own is list to each of its methods")
	fs.BoolVar(&f.Verbose, "verbose", false, "log loading progress to stderr")
	fs.BoolVar(&f.LogJSON, "log-json", false, "write logs as JSON lines")
}

// Logger returns the logger the flags select.
func (f *LoadFlags) Logger() loader.Logger {
	return NewLogger(stderr, f.Verbose, f.LogJSON)
}

// Flatten loads and flattens the document at specPath, which may be a local
// path, an http(s) URL, or StdinFilePath.
func (f *LoadFlags) Flatten(ctx context.Context, specPath string, extra ...flatten.Option) (*flatten.Result, error) {
	opts := []flatten.Option{
		flatten.WithLogger(f.Logger()),
		flatten.WithConcurrency(f.Concurrency),
		flatten.WithResolveHTTP(f.ResolveHTTP),
		flatten.WithMaxIncludeDepth(f.MaxIncludeDepth),
		flatten.WithRootDir(f.RootDir),
		flatten.WithResourceTraits(f.ResourceTraits),
		flatten.WithUserAgent(specflat.UserAgent()),
	}
	switch {
	case specPath == StdinFilePath:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		opts = append(opts, flatten.WithBytes(data))
	case source.IsURL(specPath):
		opts = append(opts, flatten.WithURL(specPath))
	default:
		opts = append(opts, flatten.WithFilePath(specPath))
	}
	return flatten.FlattenWithOptions(ctx, append(opts, extra...)...)
}

// parseArgs parses args into fs, returning errHelp when help was requested.
func parseArgs(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

var errHelp = errors.New("help requested")

// printDiagnostics lists degraded includes and skipped references.
func printDiagnostics(result *flatten.Result) {
	if !result.HasDiagnostics() {
		return
	}
	Writef(stderr, "Diagnostics:\n")
	for _, d := range result.Diagnostics {
		Writef(stderr, "  - %s\n", d)
	}
}
