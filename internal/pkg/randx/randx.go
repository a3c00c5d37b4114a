/*
Package randx provides generators for the opaque identifiers used by the relay.

Connection identities and message identifiers are standard UUID v4 strings.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionID generates the opaque identity assigned to one WebSocket session.
// It stays stable for the lifetime of the session and is never reused.
func ConnectionID() string {
	return uuid.New().String()
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidID reports whether s is a canonical UUID string as produced by this package.
func IsValidID(s string) bool {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return parsed.String() == s
}
