package handoff

import (
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
)

// Entry is a stored handoff.
type Entry struct {
	// Route is the detail navigation target with its state.
	Route comic.DetailRoute `json:"route"`

	// CreatedAt is when the handoff was stored.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the handoff stops resolving.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
