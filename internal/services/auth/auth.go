package auth

import (
	"errors"
)

// ServiceName is the keychain service the session token is stored under.
const ServiceName = "netmon"

// TokenKey is the keychain entry holding the session token.
const TokenKey = "token"

var ErrTokenNotFound = errors.New("auth token not found")

// Store persists the session token. Tokens are opaque; no shape or expiry
// checks are made.
type Store interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

// DefaultStore returns the standard store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}
