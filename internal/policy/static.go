package policy

import (
	"context"
	"strings"
	"sync"
)

// StaticPolicy holds an in-memory email set. Used for single-process
// deployments without a database and in tests. The set is mutable so a
// policy change is visible to sessions issued before the change.
type StaticPolicy struct {
	mu     sync.RWMutex
	emails map[string]struct{}
}

func NewStaticPolicy(emails ...string) *StaticPolicy {
	p := &StaticPolicy{emails: make(map[string]struct{})}
	p.Set(emails...)
	return p
}

func (p *StaticPolicy) IsElevated(ctx context.Context, email string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.emails[strings.ToLower(email)]
	return ok, nil
}

// Set replaces the elevated email set.
func (p *StaticPolicy) Set(emails ...string) {
	next := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		next[strings.ToLower(e)] = struct{}{}
	}
	p.mu.Lock()
	p.emails = next
	p.mu.Unlock()
}
