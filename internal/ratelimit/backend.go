// Package ratelimit provides a fixed-window, per-client request limiter
// with in-memory and redis backed counters.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Backend counts hits per key within a fixed window.
type Backend interface {
	// Incr adds one hit for key and returns the hit count of the current
	// window and the time left until it resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type counter struct {
	count   int64
	resetAt time.Time
}

// MemoryBackend keeps counters in process memory. Expired windows are
// replaced lazily on the next hit and swept by Cleanup.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]*counter
	now  func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]*counter),
		now:  time.Now,
	}
}

func (mb *MemoryBackend) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	now := mb.now()
	c, ok := mb.data[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		mb.data[key] = c
	}
	c.count++
	return c.count, c.resetAt.Sub(now), nil
}

// Cleanup drops every expired window.
func (mb *MemoryBackend) Cleanup() {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	now := mb.now()
	for k, c := range mb.data {
		if !now.Before(c.resetAt) {
			delete(mb.data, k)
		}
	}
}

// Len reports how many windows are tracked.
func (mb *MemoryBackend) Len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.data)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (mb *MemoryBackend) RunCleanup(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			mb.Cleanup()
		}
	}
}
