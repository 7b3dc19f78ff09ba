// Package config loads the runtime configuration of the comic catalog binaries
// from command-line flags with environment variable fallbacks.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/client"
	"github.com/Sternrassler/comic-catalog/pkg/handoff"
	"github.com/Sternrassler/comic-catalog/pkg/logging"
	"github.com/Sternrassler/comic-catalog/pkg/pagination"
	"github.com/jessevdk/go-flags"
	"github.com/redis/go-redis/v9"
)

// ErrHelp is returned by Load when the help text was requested and printed.
var ErrHelp = errors.New("help requested")

// Config is the parsed runtime configuration.
type Config struct {
	// Upstream API
	APIBaseURL     string        `long:"api-base-url" env:"API_BASE_URL" default:"https://www.sankavollerei.com" description:"Base URL of the comic API"`
	UserAgent      string        `long:"user-agent" env:"USER_AGENT" default:"comic-catalog/1.0" description:"User agent string for upstream requests"`
	RequestTimeout time.Duration `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30s" description:"Timeout of a single upstream request"`
	BatchTimeout   time.Duration `long:"batch-timeout" env:"BATCH_TIMEOUT" default:"15s" description:"Timeout of each upstream page within a UI page batch"`
	RateLimit      float64       `long:"rate-limit" env:"RATE_LIMIT" default:"5" description:"Upstream requests per second (0 disables pacing)"`
	RateBurst      int           `long:"rate-burst" env:"RATE_BURST" default:"4" description:"Upstream request burst size"`

	// HTTP server
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Redis (optional)
	RedisAddr     string        `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for shared cooldown and detail handoffs (optional)"`
	RedisPassword string        `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int           `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`
	HandoffTTL    time.Duration `long:"handoff-ttl" env:"HANDOFF_TTL" default:"15m" description:"Lifetime of a detail handoff token"`

	// Logging
	LogLevel  string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
	LogPretty bool   `long:"log-pretty" env:"LOG_PRETTY" description:"Human-readable console logs instead of JSON"`
}

// Load parses args (without the program name) and the environment.
// Returns ErrHelp after printing usage for -h/--help.
func Load(args []string) (*Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that flag parsing alone cannot.
func (c *Config) Validate() error {
	base, err := url.Parse(c.APIBaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid api base url %q", c.APIBaseURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("batch timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1")
	}
	if c.HandoffTTL <= 0 {
		return fmt.Errorf("handoff ttl must be positive")
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// RedisOptions returns the Redis connection options.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Client returns the upstream client configuration. redisClient may be nil.
func (c *Config) Client(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.UserAgent)
	cfg.BaseURL = c.APIBaseURL
	cfg.Timeout = c.RequestTimeout
	cfg.RateLimit = c.RateLimit
	cfg.RateBurst = c.RateBurst
	cfg.Redis = redisClient
	return cfg
}

// Pagination returns the batch fetcher configuration.
func (c *Config) Pagination() pagination.Config {
	cfg := pagination.DefaultConfig()
	cfg.Timeout = c.BatchTimeout
	return cfg
}

// HandoffStoreTTL returns the handoff lifetime, falling back to the package default.
func (c *Config) HandoffStoreTTL() time.Duration {
	if c.HandoffTTL <= 0 {
		return handoff.DefaultTTL
	}
	return c.HandoffTTL
}
