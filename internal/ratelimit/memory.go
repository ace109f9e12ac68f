package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key request timestamps in process memory. State is
// lost on restart and is not shared across replicas.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string][]time.Time)}
}

func (s *MemoryStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.requests[key][:0]
	for _, ts := range s.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit {
		s.requests[key] = kept
		return false, kept[0].Add(window).Sub(now), nil
	}

	s.requests[key] = append(kept, now)
	return true, 0, nil
}
