// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Component names used as the "component" field.
const (
	ComponentClient   = "comic-client"
	ComponentLibrary  = "library-fetcher"
	ComponentTrending = "trending-fetcher"
	ComponentPager    = "catalog-pager"
	ComponentAPI      = "comic-api"
	ComponentHTTP     = "http"
	ComponentBrowse   = "comic-browse"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service is stamped on every event when set.
	Service string
}

// DefaultConfig returns JSON logs at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		Service: "comic-catalog",
	}
}

// Setup installs the global logger and level and returns the logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()

	return log.Logger
}

// ParseLevel converts a level name to LogLevel.
// Returns false for names it does not recognize.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	normalized, _ := ParseLevel(string(level))
	switch normalized {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForEndpoint tags logger with the upstream endpoint label.
func ForEndpoint(logger zerolog.Logger, endpoint string) zerolog.Logger {
	return logger.With().Str("endpoint", endpoint).Logger()
}

// ForPage tags logger with a UI page and the upstream pages it maps to.
func ForPage(logger zerolog.Logger, page int, upstream []int) zerolog.Logger {
	return logger.With().Int("page", page).Ints("upstream_pages", upstream).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Upstream request flow (endpoint, page, duration)
//   - Batch plans and per-page record counts
//   - Filter decisions (title, reason)
//   - Pager generation changes and discarded stale results
//
// Info: Normal operation events
//   - Catalog and trending loads (page, kept, filtered)
//   - Handoffs stored
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Upstream 4xx/5xx responses
//   - Rate limit cooldown started (429 + Retry-After)
//   - Requests refused during a cooldown
//   - Redis unavailable for shared cooldown state
//
// Error: Error conditions requiring attention
//   - Failed catalog or trending loads
//   - Handoff store failures
//   - Configuration errors
//
// Context Fields:
//   - component: Package or subsystem emitting the event
//   - endpoint: Upstream endpoint (library, trending)
//   - page: UI page number
//   - upstream_pages: Upstream pages requested for a UI page
//   - status_code: HTTP status code
//   - duration: Request duration
//   - error_class: Error classification (not_found, client, server, rate_limit, network, decode)
//   - kept / filtered: Normalization counts
//   - generation: Pager fetch cycle number
//   - token: Handoff token
