package session

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable is reported when the store backend cannot be
	// reached from the current execution context. It is distinct from
	// "absent": callers degrade instead of treating it as "not logged in".
	ErrStoreUnavailable = errors.New("session: store unavailable")

	// ErrMalformedToken is returned by the codec when a value cannot be
	// decoded as a self-contained token under either encoding.
	ErrMalformedToken = errors.New("session: malformed token")

	// ErrUnauthorized is raised only by Service.Require for callers that
	// want error-style control flow instead of the three-valued result.
	ErrUnauthorized = errors.New("session: unauthorized")
)

// Store persists session records keyed by an opaque identifier that the
// store itself generates. Implementations must be safe for concurrent use
// and hot-swappable behind this interface.
//
// Get returns (nil, nil) both when the key never existed and when it has
// passed its TTL; callers cannot and must not distinguish the two. Backend
// failures are reported as ErrStoreUnavailable, never as absence.
type Store interface {
	Create(ctx context.Context, rec Record) (sessionID string, err error)
	Get(ctx context.Context, sessionID string) (*Record, error)
	Delete(ctx context.Context, sessionID string) error
}

// UnavailableStore models the constrained execution tier where no store
// backend is reachable at all. Every operation reports unavailability;
// resolution then succeeds only via self-contained tokens.
type UnavailableStore struct{}

func (UnavailableStore) Create(ctx context.Context, rec Record) (string, error) {
	return "", ErrStoreUnavailable
}

func (UnavailableStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableStore) Delete(ctx context.Context, sessionID string) error {
	return ErrStoreUnavailable
}
