package flatten

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/erraggy/specflat/flaterrors"
	"github.com/erraggy/specflat/internal/httputil"
	"github.com/erraggy/specflat/internal/options"
	"github.com/erraggy/specflat/loader"
	"github.com/erraggy/specflat/source"
)

// Option is a function that configures a flatten operation
type Option func(*flattenConfig) error

// flattenConfig holds configuration for a flatten operation
type flattenConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	url      *string
	src      source.Source
	srcRef   string
	bytes    []byte

	// Configuration options
	logger          loader.Logger
	methods         []string
	maxIncludeDepth int
	concurrency     int
	maxDocumentSize int64
	httpClient      *http.Client
	userAgent       string
	resolveHTTP     bool
	rootDir         string
	resourceTraits  bool
}

// FlattenWithOptions loads a document, resolves its includes, and flattens
// it, configured by functional options.
//
// Example:
//
//	result, err := flatten.FlattenWithOptions(ctx,
//	    flatten.WithFilePath("api.raml"),
//	    flatten.WithConcurrency(4),
//	)
func FlattenWithOptions(ctx context.Context, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("flatten: invalid options: %w", err)
	}

	l, err := loader.New(cfg.source(),
		loader.WithLogger(cfg.logger),
		loader.WithMaxIncludeDepth(cfg.maxIncludeDepth),
		loader.WithConcurrency(cfg.concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}

	var doc *loader.Document
	switch {
	case cfg.filePath != nil:
		doc, err = l.Load(ctx, *cfg.filePath)
	case cfg.url != nil:
		doc, err = l.Load(ctx, *cfg.url)
	case cfg.src != nil:
		doc, err = l.Load(ctx, cfg.srcRef)
	case cfg.bytes != nil:
		doc, err = l.LoadBytes(ctx, "", cfg.bytes)
	default:
		// Should never reach here due to validation in applyOptions
		return nil, fmt.Errorf("flatten: no input source specified")
	}
	if err != nil {
		return nil, err
	}

	f := &Flattener{Methods: cfg.methods, ResourceTraits: cfg.resourceTraits, Logger: cfg.logger}
	result, err := f.Flatten(doc.Root)
	if err != nil {
		return nil, err
	}
	result.SourcePath = doc.ID
	result.Documents = doc.IDs
	result.Diagnostics = slices.Concat(doc.Diagnostics, result.Diagnostics)
	result.Stats.DocumentCount = len(doc.IDs)
	result.Stats.DiagnosticCount = len(result.Diagnostics)

	cache := l.Cache().Stats()
	cfg.logger.Info("document flattened",
		"source", doc.ID,
		"documents", result.Stats.DocumentCount,
		"cache_hits", cache.Hits,
		"operations", result.Stats.OperationCount,
		"schemas", result.Stats.SchemaCount,
		"diagnostics", result.Stats.DiagnosticCount)
	return result, nil
}

// source builds the document source for the configured input.
func (cfg *flattenConfig) source() source.Source {
	if cfg.src != nil {
		return cfg.src
	}
	local := &source.FileSource{Root: cfg.rootDir, MaxSize: cfg.maxDocumentSize}
	router := &source.Router{Local: local}
	if cfg.resolveHTTP || cfg.url != nil {
		router.Remote = &source.HTTPSource{
			Client:    cfg.httpClient,
			UserAgent: cfg.userAgent,
			MaxSize:   cfg.maxDocumentSize,
		}
	}
	return router
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*flattenConfig, error) {
	cfg := &flattenConfig{
		logger:      loader.NopLogger{},
		concurrency: loader.DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource("flatten",
		[]string{"WithFilePath", "WithURL", "WithSource", "WithBytes"},
		cfg.filePath != nil, cfg.url != nil, cfg.src != nil, cfg.bytes != nil,
	); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithFilePath specifies a local file as the input source
func WithFilePath(path string) Option {
	return func(cfg *flattenConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithURL specifies an http(s) URL as the input source. Includes of a
// remote document are fetched relative to its URL.
func WithURL(url string) Option {
	return func(cfg *flattenConfig) error {
		if !source.IsURL(url) {
			return &flaterrors.ConfigError{Option: "url", Value: url, Message: "must be an http or https URL"}
		}
		cfg.url = &url
		return nil
	}
}

// WithSource reads the document ref, and everything it includes, from src.
// WithRootDir, WithResolveHTTP, WithHTTPClient, WithUserAgent, and
// WithMaxDocumentSize do not apply to a custom source.
func WithSource(src source.Source, ref string) Option {
	return func(cfg *flattenConfig) error {
		if src == nil {
			return &flaterrors.ConfigError{Option: "source", Message: "source cannot be nil"}
		}
		cfg.src = src
		cfg.srcRef = ref
		return nil
	}
}

// WithBytes specifies the entry document's content. Includes are resolved
// relative to the working directory.
func WithBytes(data []byte) Option {
	return func(cfg *flattenConfig) error {
		if data == nil {
			return &flaterrors.ConfigError{Option: "bytes", Message: "bytes cannot be nil"}
		}
		cfg.bytes = data
		return nil
	}
}

// WithLogger sets the structured logger for debug and diagnostic output.
// Default: no logging.
func WithLogger(l loader.Logger) Option {
	return func(cfg *flattenConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithMethods restricts which method keys produce endpoints.
// Default: httputil.Methods.
func WithMethods(methods ...string) Option {
	return func(cfg *flattenConfig) error {
		for _, m := range methods {
			if !httputil.IsMethod(m) {
				return &flaterrors.ConfigError{Option: "methods", Value: m, Message: "unknown method"}
			}
		}
		cfg.methods = methods
		return nil
	}
}

// WithResourceTraits applies a resource's own is list to each of its
// methods. Default: false, only method-level traits are applied.
func WithResourceTraits(enabled bool) Option {
	return func(cfg *flattenConfig) error {
		cfg.resourceTraits = enabled
		return nil
	}
}

// WithMaxIncludeDepth limits how deeply includes may nest.
// Default: loader.DefaultMaxIncludeDepth.
func WithMaxIncludeDepth(depth int) Option {
	return func(cfg *flattenConfig) error {
		if err := options.NonNegative("max_include_depth", int64(depth)); err != nil {
			return err
		}
		cfg.maxIncludeDepth = depth
		return nil
	}
}

// WithConcurrency sets how many sibling includes load in parallel.
// Default: 1.
func WithConcurrency(n int) Option {
	return func(cfg *flattenConfig) error {
		if err := options.NonNegative("concurrency", int64(n)); err != nil {
			return err
		}
		cfg.concurrency = n
		return nil
	}
}

// WithMaxDocumentSize limits the size of each document in bytes.
// Default: source.MaxDocumentSize.
func WithMaxDocumentSize(size int64) Option {
	return func(cfg *flattenConfig) error {
		if err := options.NonNegative("max_document_size", size); err != nil {
			return err
		}
		cfg.maxDocumentSize = size
		return nil
	}
}

// WithHTTPClient sets the client used for remote documents.
// If the client is nil, this option has no effect.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *flattenConfig) error {
		if client != nil {
			cfg.httpClient = client
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests
// Default: "specflat/<version>"
func WithUserAgent(ua string) Option {
	return func(cfg *flattenConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithResolveHTTP allows local documents to include http(s) URLs.
// Default: false, so a local document cannot make the process fetch
// arbitrary URLs.
func WithResolveHTTP(enabled bool) Option {
	return func(cfg *flattenConfig) error {
		cfg.resolveHTTP = enabled
		return nil
	}
}

// WithRootDir confines local includes to dir and its subdirectories.
// Default: no confinement.
func WithRootDir(dir string) Option {
	return func(cfg *flattenConfig) error {
		cfg.rootDir = dir
		return nil
	}
}
