package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-backend/internal/session"
)

func memRecord(ttl time.Duration) session.Record {
	now := time.Now()
	return session.Record{
		UserID:    "user-1",
		Subject:   "sub-1",
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, memRecord(time.Hour))
	require.NoError(t, err)
	assert.True(t, session.IsStoreID(id), "store must hand out ids of the canonical shape")

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, id, rec.SessionID)
	assert.Equal(t, "user-1", rec.UserID)

	require.NoError(t, store.Delete(ctx, id))

	rec, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rec, "deleted session must be absent, not an error")
}

func TestMemoryStore_GetUnknownIsAbsent(t *testing.T) {
	store := session.NewMemoryStore()

	id, err := session.NewID()
	require.NoError(t, err)

	rec, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStore_ExpiredIsAbsent(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, memRecord(10*time.Millisecond))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, rec, "expired and never-existed must be indistinguishable")
}

func TestMemoryStore_DeleteUnknownIsNoop(t *testing.T) {
	store := session.NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "does-not-exist"))
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Create(ctx, memRecord(5*time.Millisecond))
	require.NoError(t, err)
	keep, err := store.Create(ctx, memRecord(time.Hour))
	require.NoError(t, err)

	store.StartSweeper(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	rec, err := store.Get(ctx, keep)
	require.NoError(t, err)
	assert.NotNil(t, rec, "sweeper must not evict live sessions")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Create(ctx, memRecord(time.Hour))
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := store.Get(ctx, id); err != nil {
				t.Error(err)
			}
			if err := store.Delete(ctx, id); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
