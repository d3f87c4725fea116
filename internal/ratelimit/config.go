// Package ratelimit bounds the number of operations a principal may perform
// per limit class within a fixed window.
//
// Fixed windows admit up to twice the limit across a window boundary (the
// tail of one window plus the head of the next). This is a known property of
// the algorithm; a sliding window or token bucket is the stricter alternative.
package ratelimit

import "time"

// Class names a category of operations sharing one budget.
type Class string

const (
	// ClassQuery covers routine reads.
	ClassQuery Class = "query"
	// ClassMutation covers writes.
	ClassMutation Class = "mutation"
	// ClassAuth covers login and credential operations.
	ClassAuth Class = "auth"
	// ClassBulk covers batch operations.
	ClassBulk Class = "bulk"
	// ClassExpensive covers heavy-compute operations.
	ClassExpensive Class = "expensive"
)

// Limit configures one class: at most Limit operations per Window.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Config maps every limit class to its budget. Loaded once at process start
// and never mutated at runtime.
type Config map[Class]Limit

// DefaultConfig returns the standard class table.
func DefaultConfig() Config {
	return Config{
		ClassQuery:     {Limit: 100, Window: time.Minute},
		ClassMutation:  {Limit: 30, Window: time.Minute},
		ClassAuth:      {Limit: 10, Window: time.Minute},
		ClassBulk:      {Limit: 5, Window: time.Minute},
		ClassExpensive: {Limit: 10, Window: 5 * time.Minute},
	}
}
