package handoff

import (
	"errors"

	"github.com/google/uuid"
)

// keyPrefix namespaces handoff entries in Redis.
const keyPrefix = "comic:handoff:"

// ErrInvalidToken indicates a token that was not issued by this package.
var ErrInvalidToken = errors.New("invalid handoff token")

// Key identifies a stored handoff.
type Key struct {
	Token string
}

// NewKey creates a key with a fresh random token.
func NewKey() Key {
	return Key{Token: uuid.NewString()}
}

// ParseKey validates a token received from a client.
func ParseKey(token string) (Key, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return Key{}, ErrInvalidToken
	}
	return Key{Token: id.String()}, nil
}

// String generates the Redis key.
// Format: comic:handoff:<token>
func (k Key) String() string {
	return keyPrefix + k.Token
}
