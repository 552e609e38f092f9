package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the multi-process store backend. Expiry is delegated to
// Redis native TTLs, so Get never sees an expired record. Any backend
// error other than a key miss is reported as ErrStoreUnavailable: from
// this code path we cannot tell "not logged in" from "store unreachable",
// and the Service must not confuse the two.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Create(ctx context.Context, rec Record) (string, error) {
	if rec.UserID == "" {
		return "", fmt.Errorf("session: missing user_id")
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return "", fmt.Errorf("session: expires_at must be in the future")
	}

	id, err := NewID()
	if err != nil {
		return "", err
	}
	rec.SessionID = id

	data, err := marshalRecord(rec)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(id), data, ttl).Err(); err != nil {
		return "", errors.Join(ErrStoreUnavailable, err)
	}

	return id, nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil // never existed or past TTL
	}
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	rec, err := unmarshalRecord([]byte(val))
	if err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	return rec, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
