package loader

import "github.com/erraggy/specflat/internal/options"

const (
	// DefaultMaxIncludeDepth is the deepest include chain followed before
	// loading fails with a ResourceLimitError.
	DefaultMaxIncludeDepth = 64

	// DefaultConcurrency loads includes one at a time.
	DefaultConcurrency = 1
)

// Option is a function that configures a Loader
type Option func(*loaderConfig) error

type loaderConfig struct {
	logger          Logger
	maxIncludeDepth int
	concurrency     int
}

func applyOptions(opts ...Option) (*loaderConfig, error) {
	cfg := &loaderConfig{
		logger:          NopLogger{},
		maxIncludeDepth: DefaultMaxIncludeDepth,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets the logger. A nil logger keeps the NopLogger default.
func WithLogger(l Logger) Option {
	return func(cfg *loaderConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithMaxIncludeDepth limits how many includes may be nested.
// 0 means DefaultMaxIncludeDepth.
func WithMaxIncludeDepth(depth int) Option {
	return func(cfg *loaderConfig) error {
		if err := options.NonNegative("max_include_depth", int64(depth)); err != nil {
			return err
		}
		if depth == 0 {
			depth = DefaultMaxIncludeDepth
		}
		cfg.maxIncludeDepth = depth
		return nil
	}
}

// WithConcurrency sets how many sibling includes of one document are loaded
// in parallel. Splice order always follows declaration order.
// 0 means DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(cfg *loaderConfig) error {
		if err := options.NonNegative("concurrency", int64(n)); err != nil {
			return err
		}
		if n == 0 {
			n = DefaultConcurrency
		}
		cfg.concurrency = n
		return nil
	}
}
