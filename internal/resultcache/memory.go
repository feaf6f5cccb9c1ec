package resultcache

import (
	"context"
	"sync"
	"time"

	"mergeq/internal/domain"
)

// MemoryStore is an in-process Store for tests and single-node development
// runs without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result    domain.JobResult
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) StoreResult(ctx context.Context, id string, result domain.JobResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{result: result, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, id string) (*domain.JobResult, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}
	result := entry.result
	return &result, nil
}

var _ Store = (*MemoryStore)(nil)
