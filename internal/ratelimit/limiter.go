package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Window is the stored counter state for one (principal, class) key.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Store persists window counters. The memory implementation serves a single
// process; the redis implementation shares budgets across instances.
type Store interface {
	// Take applies the fixed-window algorithm for key: start a fresh window
	// when none is active, otherwise count the request against the current
	// one. It reports the resulting window state and whether the request
	// was admitted. A denied request must not grow the stored count.
	Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, bool, error)
	// Peek returns the active window for key without mutating it, or nil
	// when no window is active.
	Peek(ctx context.Context, key string, now time.Time) (*Window, error)
	// Remove drops the given keys.
	Remove(ctx context.Context, keys ...string) error
	// Clear drops every window.
	Clear(ctx context.Context) error
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Status is the read-only view of one active window.
type Status struct {
	Count     int
	Remaining int
	ResetIn   time.Duration
	ResetAt   time.Time
}

// Limiter enforces per-principal budgets per limit class.
type Limiter struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New constructs a Limiter over the given store and class table.
func New(store Store, cfg Config, opts ...Option) *Limiter {
	l := &Limiter{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one operation of the given class against the principal's
// budget and reports whether it is admitted.
func (l *Limiter) Allow(ctx context.Context, principalID string, class Class) (Decision, error) {
	limit, ok := l.cfg[class]
	if !ok {
		return Decision{}, fmt.Errorf("ratelimit: unknown class %q", class)
	}
	win, allowed, err := l.store.Take(ctx, l.key(principalID, class), limit.Limit, limit.Window, l.now())
	if err != nil {
		return Decision{}, err
	}
	remaining := limit.Limit - win.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   allowed,
		Remaining: remaining,
		ResetIn:   win.ResetAt.Sub(l.now()),
	}, nil
}

// Status inspects the principal's current window for a class without
// counting anything. It returns nil when no window is active.
func (l *Limiter) Status(ctx context.Context, principalID string, class Class) (*Status, error) {
	limit, ok := l.cfg[class]
	if !ok {
		return nil, fmt.Errorf("ratelimit: unknown class %q", class)
	}
	win, err := l.store.Peek(ctx, l.key(principalID, class), l.now())
	if err != nil {
		return nil, err
	}
	if win == nil {
		return nil, nil
	}
	remaining := limit.Limit - win.Count
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		Count:     win.Count,
		Remaining: remaining,
		ResetIn:   win.ResetAt.Sub(l.now()),
		ResetAt:   win.ResetAt,
	}, nil
}

// Reset clears the principal's windows for the given classes, or for every
// class when none are named.
func (l *Limiter) Reset(ctx context.Context, principalID string, classes ...Class) error {
	if len(classes) == 0 {
		for class := range l.cfg {
			classes = append(classes, class)
		}
	}
	keys := make([]string, 0, len(classes))
	for _, class := range classes {
		keys = append(keys, l.key(principalID, class))
	}
	return l.store.Remove(ctx, keys...)
}

// ClearAll wipes every window in the store.
func (l *Limiter) ClearAll(ctx context.Context) error {
	return l.store.Clear(ctx)
}

func (l *Limiter) key(principalID string, class Class) string {
	return string(class) + ":" + principalID
}
