package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in a mutex-guarded map. Suitable for
// single-process deployments, such as internal tools where only a bounded
// number of people can be logged in. Expired records are evicted lazily on
// Get; a background sweep can be started for long-running processes so the
// map does not grow with abandoned sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
	done chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]Record),
		done: make(chan struct{}),
	}
}

func (m *MemoryStore) Create(ctx context.Context, rec Record) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}
	rec.SessionID = id

	m.mu.Lock()
	m.recs[id] = rec
	m.mu.Unlock()

	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	m.mu.RLock()
	rec, ok := m.recs[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if rec.IsExpired() {
		m.mu.Lock()
		delete(m.recs, sessionID)
		m.mu.Unlock()
		return nil, nil
	}

	return &rec, nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.recs, sessionID)
	m.mu.Unlock()
	return nil
}

// StartSweeper evicts expired records every interval until Close is called.
func (m *MemoryStore) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.done:
				return
			}
		}
	}()
}

func (m *MemoryStore) sweep() {
	now := time.Now()
	m.mu.Lock()
	for id, rec := range m.recs {
		if !now.Before(rec.ExpiresAt) {
			delete(m.recs, id)
		}
	}
	m.mu.Unlock()
}

func (m *MemoryStore) Close() error {
	close(m.done)
	return nil
}
