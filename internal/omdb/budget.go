package omdb

import "errors"

// ErrBudgetExhausted indicates the per-run call budget has been spent. No
// network access occurs once it is returned.
var ErrBudgetExhausted = errors.New("omdb: call budget exhausted")

// Limiter enforces the per-run API call budget. It counts actual network
// attempts only; cache hits must never reach Acquire. The limiter is reset
// by constructing a new one at process start.
//
// Access is unsynchronized on purpose: enrichment is strictly serialized
// (one outstanding call). A future concurrent fetcher must put a mutex or
// actor boundary around this counter and the cache.
type Limiter struct {
	limit int
	used  int
}

// NewLimiter creates a limiter allowing at most limit calls.
func NewLimiter(limit int) *Limiter {
	if limit < 0 {
		limit = 0
	}
	return &Limiter{limit: limit}
}

// Acquire reserves one call. It returns ErrBudgetExhausted without touching
// the counter once the budget is spent; callers must only Acquire when they
// are about to perform a network attempt.
func (l *Limiter) Acquire() error {
	if l.used >= l.limit {
		return ErrBudgetExhausted
	}
	l.used++
	return nil
}

// Used reports how many calls have been made this run.
func (l *Limiter) Used() int { return l.used }

// Remaining reports how many calls are left in the budget.
func (l *Limiter) Remaining() int { return l.limit - l.used }

// Exhausted reports whether the budget is spent.
func (l *Limiter) Exhausted() bool { return l.used >= l.limit }
