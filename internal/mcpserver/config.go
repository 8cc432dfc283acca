package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheSweepInterval time.Duration

	// Walk tool defaults.
	WalkLimit int
	MaxLimit  int

	// Loading.
	Concurrency     int
	ResolveHTTP     bool
	AllowPrivateIPs bool
	MaxInlineSize   int64
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from SPECFLAT_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("SPECFLAT_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("SPECFLAT_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("SPECFLAT_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:        envDuration("SPECFLAT_CACHE_URL_TTL", 5*time.Minute),
		CacheSweepInterval: envDuration("SPECFLAT_CACHE_SWEEP_INTERVAL", 60*time.Second),
		WalkLimit:          envInt("SPECFLAT_WALK_LIMIT", 100),
		MaxLimit:           envInt("SPECFLAT_MAX_LIMIT", 1000),
		Concurrency:        envInt("SPECFLAT_CONCURRENCY", 4),
		ResolveHTTP:        envBool("SPECFLAT_RESOLVE_HTTP", false),
		AllowPrivateIPs:    envBool("SPECFLAT_ALLOW_PRIVATE_IPS", false),
		MaxInlineSize:      int64(envInt("SPECFLAT_MAX_INLINE_SIZE", 10*1024*1024)),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
