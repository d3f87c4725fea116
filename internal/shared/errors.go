package shared

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrSessionInvalid indicates an unknown or expired session token.
	ErrSessionInvalid = errors.New("session invalid")
)

// RateLimitedError reports an exhausted quota for one principal and limit
// class. It is retryable: ResetIn tells the caller how long until the
// current window rolls over.
type RateLimitedError struct {
	Class   string
	ResetIn time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s operations, retry in %s", e.Class, e.ResetIn.Round(time.Second))
}
