package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in a process-local map. State is not
// shared across instances; horizontally scaled deployments should use
// RedisStore behind the same interface.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

// Take implements Store.
func (s *MemoryStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[key]
	if !ok || !now.Before(win.ResetAt) {
		win = Window{Count: 1, ResetAt: now.Add(window)}
		s.windows[key] = win
		return win, true, nil
	}
	if win.Count >= limit {
		return win, false, nil
	}
	win.Count++
	s.windows[key] = win
	return win, true, nil
}

// Peek implements Store.
func (s *MemoryStore) Peek(ctx context.Context, key string, now time.Time) (*Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	win, ok := s.windows[key]
	if !ok || !now.Before(win.ResetAt) {
		return nil, nil
	}
	out := win
	return &out, nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.windows, key)
	}
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows = make(map[string]Window)
	return nil
}
