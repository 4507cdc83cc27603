package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhadevv/anichin/internal/testutil"
)

// fakeClock advances only when sleep is called.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, delay time.Duration) (*Limiter, *fakeClock, *[]time.Duration) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var sleeps []time.Duration
	l := NewLimiter(Config{MinDelay: delay}, testutil.NewTestLogger(t))
	l.now = clock.Now
	l.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		clock.Advance(d)
		return nil
	}
	return l, clock, &sleeps
}

func TestLimiter_FirstRequestDoesNotWait(t *testing.T) {
	l, _, sleeps := newTestLimiter(t, time.Second)

	require.NoError(t, l.Wait(context.Background()))
	assert.Empty(t, *sleeps)
}

func TestLimiter_DelayMeasuredFromCompletion(t *testing.T) {
	l, clock, sleeps := newTestLimiter(t, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	clock.Advance(300 * time.Millisecond) // request in flight
	l.Done()

	require.NoError(t, l.Wait(ctx))
	require.Len(t, *sleeps, 1)
	assert.Equal(t, time.Second, (*sleeps)[0])
}

func TestLimiter_NoWaitAfterIdle(t *testing.T) {
	l, clock, sleeps := newTestLimiter(t, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	l.Done()
	clock.Advance(2 * time.Second)

	require.NoError(t, l.Wait(ctx))
	assert.Empty(t, *sleeps)
}

func TestLimiter_ConcurrentReservationsAreSpaced(t *testing.T) {
	l := NewLimiter(Config{MinDelay: 50 * time.Millisecond}, testutil.NopLogger())
	ctx := context.Background()

	var mu sync.Mutex
	var starts []time.Time
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(ctx))
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, starts, 4)
	first, last := starts[0], starts[0]
	for _, s := range starts {
		if s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}
	assert.GreaterOrEqual(t, last.Sub(first), 100*time.Millisecond)
	assert.Equal(t, int64(4), l.Status().Requests)
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := NewLimiter(Config{MinDelay: time.Hour}, testutil.NopLogger())
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_ZeroDelayDisables(t *testing.T) {
	l, _, sleeps := newTestLimiter(t, 0)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, l.Wait(ctx))
		l.Done()
	}
	assert.Empty(t, *sleeps)
}
