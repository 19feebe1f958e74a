package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCallLimitExceeded is wrapped by CallLimiter.Increment once the budget is spent.
var ErrCallLimitExceeded = errors.New("call limit exceeded")

// CallLimiter enforces a maximum number of allowed calls (e.g. model requests
// made by a policy during one run).
type CallLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallLimiter creates a limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewCallLimiter(max int) *CallLimiter {
	return &CallLimiter{max: max}
}

// Increment records a call and returns an error if the limit is exceeded.
func (l *CallLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("%w: %d", ErrCallLimitExceeded, l.max)
	}

	return nil
}

// Count returns the number of calls recorded so far.
func (l *CallLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many calls are left; -1 means unlimited.
func (l *CallLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}
	if l.count >= l.max {
		return 0
	}

	return l.max - l.count
}

// Reset clears the counter.
func (l *CallLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count = 0
}
