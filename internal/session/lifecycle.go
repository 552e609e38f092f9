package session

import (
	"context"
	"encoding/json"
	"time"

	"admin-backend/internal/logger"
)

// StartParams carries the claims asserted by the external identity
// provider at login. RawTags is the tags claim in whatever shape the
// provider sent it.
type StartParams struct {
	UserID      string
	Subject     string
	Email       string
	DisplayName string
	RawTags     json.RawMessage
}

// Started is the result of creating a session: a store reference and an
// independently issued self-contained token for the same logical login.
// The transport layer sets both cookies so later resolution succeeds via
// whichever one survives.
type Started struct {
	// SessionID is empty when the store write was skipped or failed; the
	// token alone is always sufficient.
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Start creates a session for a successful credential exchange. Each
// exchange produces an independent record; there is no dedup by user. The
// store write is best-effort: if the backend is unreachable the login
// still succeeds on the token half, and an orphaned store entry from the
// reverse failure simply expires on its own.
func (s *Service) Start(ctx context.Context, params StartParams) (*Started, error) {
	now := time.Now()
	rec := Record{
		UserID:      params.UserID,
		Subject:     params.Subject,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Tags:        NormalizeTags(params.RawTags),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sessionID, err := s.store.Create(cctx, rec)
	if err != nil {
		logger.Warn("session store write failed, issuing token-only session", map[string]any{
			"user_id": params.UserID,
			"error":   err.Error(),
		})
		sessionID = ""
	}

	// The token is encoded from the same logical content but stands on its
	// own; it does not embed the store id.
	token, err := s.codec.Encode(rec)
	if err != nil {
		return nil, err
	}

	return &Started{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Destroy ends the session the candidate refers to. Only store references
// can be revoked server-side; a self-contained token stays structurally
// valid until its embedded expiry, so for that shape destruction is
// nothing beyond clearing the transport, which is the caller's job.
func (s *Service) Destroy(ctx context.Context, candidate string) {
	if !IsStoreID(candidate) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(cctx, candidate); err != nil {
		logger.Warn("session store delete failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// NormalizeTags converts the provider's tags claim into an ordered string
// slice. The claim legitimately arrives in three shapes: a native JSON
// array, a JSON string that itself encodes an array, or a bare string
// naming a single tag. This is the only place normalization happens; the
// rest of the system sees one canonical shape.
func NormalizeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		return tags
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil
	}
	if single == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(single), &tags); err == nil {
		return tags
	}

	return []string{single}
}
