package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMemoryBackend() (*MemoryBackend, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mb := NewMemoryBackend()
	mb.now = clk.Now
	return mb, clk
}

func TestMemoryBackend_IncrWithinWindow(t *testing.T) {
	mb, clk := newTestMemoryBackend()
	ctx := context.Background()

	n, ttl, err := mb.Incr(ctx, "10.0.0.1", time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, time.Second, ttl)

	clk.Advance(400 * time.Millisecond)
	n, ttl, err = mb.Incr(ctx, "10.0.0.1", time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 600*time.Millisecond, ttl)
}

func TestMemoryBackend_WindowResets(t *testing.T) {
	mb, clk := newTestMemoryBackend()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _, _ = mb.Incr(ctx, "k", time.Second)
	}
	clk.Advance(time.Second)
	n, _, err := mb.Incr(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryBackend_KeysAreIndependent(t *testing.T) {
	mb, _ := newTestMemoryBackend()
	ctx := context.Background()
	_, _, _ = mb.Incr(ctx, "a", time.Second)
	_, _, _ = mb.Incr(ctx, "a", time.Second)
	n, _, _ := mb.Incr(ctx, "b", time.Second)
	assert.EqualValues(t, 1, n)
}

func TestMemoryBackend_Cleanup(t *testing.T) {
	mb, clk := newTestMemoryBackend()
	ctx := context.Background()
	_, _, _ = mb.Incr(ctx, "old", time.Second)
	clk.Advance(500 * time.Millisecond)
	_, _, _ = mb.Incr(ctx, "new", time.Second)
	clk.Advance(600 * time.Millisecond)

	mb.Cleanup()
	assert.Equal(t, 1, mb.Len())
}

func TestMemoryBackend_ConcurrentIncr(t *testing.T) {
	mb := NewMemoryBackend()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = mb.Incr(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()
	n, _, err := mb.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 101, n)
}

func TestMemoryBackend_ImplementsInterface(t *testing.T) {
	var _ Backend = (*MemoryBackend)(nil)
	var _ Backend = (*RedisBackend)(nil)
}
