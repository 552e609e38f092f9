package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// idBytes is the entropy of a store identifier; hex-encoded it yields
// IDLength characters.
const idBytes = 32

// IDLength is the exact length of a store identifier.
const IDLength = idBytes * 2

// Record represents an authenticated identity for a bounded time window.
// It is immutable after creation; there is no update operation, only
// deletion. Email, DisplayName and Tags are cached at creation time and
// may be stale relative to the user directory.
type Record struct {
	// SessionID keys the record in the store. It is empty on records that
	// only ever live inside a self-contained token.
	SessionID string

	// UserID references the user directory; not owned by this package.
	UserID string

	// Subject is the stable identifier asserted by the external identity
	// provider, distinct from UserID.
	Subject string

	Email       string
	DisplayName string

	// Tags are the role labels asserted by the identity provider at login,
	// normalized once at session creation and never re-derived.
	Tags []string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the record's absolute expiry has passed.
func (r Record) IsExpired() bool {
	return !time.Now().Before(r.ExpiresAt)
}

// NewID generates a cryptographically secure store identifier.
// 32 random bytes, hex-encoded: 64 characters of [0-9a-f].
func NewID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IsStoreID reports whether candidate has exactly the shape of a store
// identifier: fixed length, lowercase hex only. Classification is total;
// anything else is treated as a self-contained token. A string of this
// shape is never valid token data, so the two interpretations cannot
// overlap.
func IsStoreID(candidate string) bool {
	if len(candidate) != IDLength {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
