// Package cache provides a single-value TTL cache with single-flight fill
// semantics. The clock is injectable so expiry is testable without sleeping.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type TTL[T any] struct {
	ttl   time.Duration
	now   func() time.Time
	clone func(T) T

	group singleflight.Group

	mu        sync.Mutex
	value     T
	expiresAt time.Time
	filled    bool
}

type Option[T any] func(*TTL[T])

// WithClock replaces the wall clock, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTL[T]) { c.now = now }
}

// WithClone installs a deep-copy function applied to every returned value,
// so concurrent callers cannot mutate the shared cached state.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(c *TTL[T]) { c.clone = clone }
}

// NewTTL builds a cache holding one value for ttl. A non-positive ttl means
// the value never expires within the process lifetime.
func NewTTL[T any](ttl time.Duration, opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value, filling it via fill on a miss. Concurrent
// callers during a miss share one in-flight fill instead of issuing
// duplicates. Fill errors are not cached.
func (c *TTL[T]) Get(ctx context.Context, fill func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(); ok {
		return c.cloned(v), nil
	}

	result, err, _ := c.group.Do("fill", func() (interface{}, error) {
		// A caller queued behind the winning fill sees the fresh value here.
		if v, ok := c.fresh(); ok {
			return v, nil
		}

		v, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.value = v
		c.filled = true
		if c.ttl > 0 {
			c.expiresAt = c.now().Add(c.ttl)
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return c.cloned(result.(T)), nil
}

func (c *TTL[T]) fresh() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled {
		var zero T
		return zero, false
	}
	if c.ttl > 0 && !c.now().Before(c.expiresAt) {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *TTL[T]) cloned(v T) T {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}
