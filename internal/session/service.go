package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"admin-backend/internal/directory"
	"admin-backend/internal/logger"
	"admin-backend/internal/policy"
)

// Identity is the canonical resolved identity handed to callers. Tags come
// from the session (asserted at login); IsElevated is derived from current
// directory and policy state at resolution time.
type Identity struct {
	ID          string
	Subject     string
	Email       string
	DisplayName string
	Tags        []string
	IsElevated  bool
}

// Service turns an inbound request into a verified, expiry-checked
// identity. A candidate credential is classified as either a store
// reference or a self-contained token, resolved through the matching path,
// and validated identically regardless of which path produced the record.
type Service struct {
	store   Store
	codec   Codec
	dir     directory.Directory
	policy  policy.Policy
	ttl     time.Duration
	timeout time.Duration
}

func NewService(
	store Store,
	dir directory.Directory,
	pol policy.Policy,
	ttl time.Duration,
	timeout time.Duration,
) *Service {
	return &Service{
		store:   store,
		dir:     dir,
		policy:  pol,
		ttl:     ttl,
		timeout: timeout,
	}
}

// TTL returns the fixed session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Resolve returns the identity for the request, (nil, nil) when there is
// no valid session, and an error only for failures that are not "just not
// logged in". Expired, malformed, revoked and store-unavailable all
// collapse to absent: distinguishing them at the response level would hand
// clients an oracle for probing session state and backend topology.
func (s *Service) Resolve(ctx context.Context, r *http.Request) (*Identity, error) {
	candidate, ok := ResolveCandidate(r)
	if !ok {
		return nil, nil
	}

	var rec *Record

	if IsStoreID(candidate) {
		// A store-id-shaped string is never valid token data, so when the
		// store cannot answer the only correct outcome is absent; decoding
		// it as a token would be wrong, not merely degraded.
		rec = s.fromStore(ctx, candidate)
	} else {
		decoded, err := s.codec.Decode(candidate)
		if err != nil {
			return nil, nil
		}
		rec = decoded
	}

	if rec == nil {
		return nil, nil
	}

	// Same expiry rule for both resolution paths. The store usually evicts
	// on its own, but a self-contained token carries its own clock.
	if rec.IsExpired() {
		return nil, nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The account may have been deleted since the session was issued.
	user, err := s.dir.FindByID(cctx, rec.UserID)
	if err != nil {
		logger.Error("directory lookup failed during resolution", map[string]any{
			"user_id": rec.UserID,
			"error":   err.Error(),
		})
		return nil, nil
	}
	if user == nil {
		return nil, nil
	}

	// Elevation is keyed on the directory's current email, not the cached
	// session email: privilege must not survive an email change, and must
	// not attach to an email the directory no longer associates with this
	// user.
	elevated, err := s.policy.IsElevated(cctx, user.Email)
	if err != nil {
		logger.Error("elevation policy check failed", map[string]any{
			"user_id": rec.UserID,
			"error":   err.Error(),
		})
		elevated = false
	}

	return &Identity{
		ID:          user.ID,
		Subject:     rec.Subject,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Tags:        rec.Tags,
		IsElevated:  elevated,
	}, nil
}

// Require is the error-style wrapper over Resolve: absent becomes
// ErrUnauthorized. It adds no logic of its own.
func (s *Service) Require(ctx context.Context, r *http.Request) (*Identity, error) {
	ident, err := s.Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, ErrUnauthorized
	}
	return ident, nil
}

func (s *Service) fromStore(ctx context.Context, sessionID string) *Record {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.Get(cctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			logger.Warn("session store unavailable, degrading to absent", map[string]any{
				"error": err.Error(),
			})
		} else {
			logger.Error("session store lookup failed", map[string]any{
				"error": err.Error(),
			})
		}
		return nil
	}
	return rec
}
