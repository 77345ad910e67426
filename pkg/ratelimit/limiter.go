package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow reports whether an operation may proceed now, consuming the slot
	Allow() bool
	// Wait blocks until an operation may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset resets the limiter state
	Reset()
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval enforces a minimum gap between consecutive operations. The first
// operation is never delayed.
type Interval struct {
	gap  time.Duration
	last time.Time
	mu   sync.Mutex
}

// NewInterval creates an interval limiter
func NewInterval(gap time.Duration) *Interval {
	return &Interval{gap: gap}
}

// Allow consumes the slot if the gap since the last operation has passed
func (iv *Interval) Allow() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	now := time.Now()
	if iv.last.IsZero() || now.Sub(iv.last) >= iv.gap {
		iv.last = now
		return true
	}
	return false
}

// Wait blocks until the gap since the last operation has passed
func (iv *Interval) Wait(ctx context.Context) error {
	for !iv.Allow() {
		iv.mu.Lock()
		remaining := iv.gap - time.Since(iv.last)
		iv.mu.Unlock()

		if remaining <= 0 {
			continue
		}
		if err := sleep(ctx, remaining); err != nil {
			return err
		}
	}
	return nil
}

// Reset forgets the last operation so the next one proceeds immediately
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.last = time.Time{}
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// PerMinute creates a bucket allowing n requests per minute, or nil when n
// is not positive
func PerMinute(n int) *TokenBucket {
	if n <= 0 {
		return nil
	}
	return NewTokenBucket(n, time.Minute)
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		tb.mu.Lock()
		untilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if untilRefill <= 0 {
			// avoid busy waiting on a refill that is due
			untilRefill = 10 * time.Millisecond
		}
		if err := sleep(ctx, untilRefill); err != nil {
			return err
		}
	}
	return nil
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill tops the bucket up once a full period has elapsed
func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
