package cache

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimitStore is the in-process fixed-window counter. Windows reset
// lazily on read and write; Sweep evicts the leftovers.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]window
}

// NewMemoryRateLimitStore creates an empty in-memory store
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]window),
	}
}

func (s *MemoryRateLimitStore) Count(_ context.Context, key string, now time.Time) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		return 0, time.Time{}, nil
	}
	return w.count, w.resetAt, nil
}

func (s *MemoryRateLimitStore) Incr(_ context.Context, key string, windowLen time.Duration, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.windows[key] = window{count: 1, resetAt: now.Add(windowLen)}
		return nil
	}
	w.count++
	s.windows[key] = w
	return nil
}

func (s *MemoryRateLimitStore) Sweep(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
	return nil
}
