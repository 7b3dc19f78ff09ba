// Package ratelimit paces requests to the upstream comic API and honours the
// cooldown it announces with 429 Too Many Requests and Retry-After.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyCooldownUntil = "comic:rate_limit:cooldown_until"
	RedisKeyLastStatus    = "comic:rate_limit:last_status"
	RedisKeyLastUpdate    = "comic:rate_limit:last_update"
)

// DefaultCooldown applies when a 429 arrives without a usable Retry-After header.
const DefaultCooldown = 30 * time.Second

// MaxCooldown caps the cooldown an upstream can impose.
const MaxCooldown = 10 * time.Minute

// RateLimitState represents the cooldown state learned from upstream responses.
// With Redis configured it is shared across all service instances.
type RateLimitState struct {
	// CooldownUntil is when requests may resume. Zero means no cooldown.
	CooldownUntil time.Time `json:"cooldown_until"`

	// LastStatus is the HTTP status of the response that last updated the state.
	LastStatus int `json:"last_status"`

	// LastUpdate is the timestamp when this state was last updated.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// CoolingDown reports whether requests must be refused right now.
func (s *RateLimitState) CoolingDown() bool {
	return time.Now().Before(s.CooldownUntil)
}

// TimeUntilReset returns the remaining cooldown, or 0 when none is active.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.CooldownUntil)
	if duration < 0 {
		return 0
	}
	return duration
}
