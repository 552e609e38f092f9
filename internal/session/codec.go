package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// recordWire is the serialized form shared by the codec and the store
// backends. Timestamps travel as absolute epoch milliseconds.
type recordWire struct {
	SessionID   string   `json:"sid,omitempty"`
	UserID      string   `json:"user_id"`
	Subject     string   `json:"sub"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"name,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	ExpiresAt   int64    `json:"expires_at"`
}

func marshalRecord(rec Record) ([]byte, error) {
	return json.Marshal(recordWire{
		SessionID:   rec.SessionID,
		UserID:      rec.UserID,
		Subject:     rec.Subject,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Tags:        rec.Tags,
		CreatedAt:   rec.CreatedAt.UnixMilli(),
		ExpiresAt:   rec.ExpiresAt.UnixMilli(),
	})
}

func unmarshalRecord(data []byte) (*Record, error) {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.UserID == "" || w.ExpiresAt == 0 {
		return nil, errors.New("session: missing required fields")
	}
	return &Record{
		SessionID:   w.SessionID,
		UserID:      w.UserID,
		Subject:     w.Subject,
		Email:       w.Email,
		DisplayName: w.DisplayName,
		Tags:        w.Tags,
		CreatedAt:   time.UnixMilli(w.CreatedAt),
		ExpiresAt:   time.UnixMilli(w.ExpiresAt),
	}, nil
}

// Codec converts a record to and from a compact self-contained string.
// Decoding needs no server-side state, which is what lets resolution work
// where the store backend is unreachable. The codec only judges structure;
// the expiry check belongs to the Service.
type Codec struct{}

// Encode serializes rec as base64url-encoded JSON.
func (Codec) Encode(rec Record) (string, error) {
	data, err := marshalRecord(rec)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a self-contained token. It tries the canonical encoding
// first, then falls back to treating the input as bare JSON: intermediaries
// sometimes store the payload as a cookie value without the outer base64
// layer. If both attempts fail the token is malformed.
func (Codec) Decode(token string) (*Record, error) {
	if data, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		if rec, err := unmarshalRecord(data); err == nil {
			return rec, nil
		}
	}
	// Padded base64 shows up when the value passed through a cookie jar
	// that re-encoded it.
	if data, err := base64.URLEncoding.DecodeString(token); err == nil {
		if rec, err := unmarshalRecord(data); err == nil {
			return rec, nil
		}
	}
	if rec, err := unmarshalRecord([]byte(token)); err == nil {
		return rec, nil
	}
	return nil, ErrMalformedToken
}
