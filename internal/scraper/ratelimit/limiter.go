// Package ratelimit enforces a minimum delay between outbound requests.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config defines rate limit configuration.
type Config struct {
	// MinDelay is the minimum gap between two requests. Zero disables limiting.
	MinDelay time.Duration
}

// DefaultConfig returns the default rate limit configuration.
func DefaultConfig() Config {
	return Config{MinDelay: time.Second}
}

// Limiter serializes request start times. A slot is reserved under the mutex,
// so concurrent callers never start inside the same window.
type Limiter struct {
	logger zerolog.Logger
	config Config

	mu       sync.Mutex
	last     time.Time
	requests int64
	waited   time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// LimitStatus represents the current limiter state.
type LimitStatus struct {
	MinDelayMs    int64     `json:"minDelayMs"`
	Requests      int64     `json:"requests"`
	TotalWaitedMs int64     `json:"totalWaitedMs"`
	LastRequest   time.Time `json:"lastRequest,omitempty"`
	NextAvailable time.Time `json:"nextAvailable,omitempty"`
}

// NewLimiter creates a new rate limiter.
func NewLimiter(config Config, logger zerolog.Logger) *Limiter {
	return &Limiter{
		logger: logger.With().Str("component", "rate-limiter").Logger(),
		config: config,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Wait blocks until the caller may start a request, or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	start := now
	if l.config.MinDelay > 0 && !l.last.IsZero() {
		if next := l.last.Add(l.config.MinDelay); next.After(now) {
			start = next
		}
	}
	l.last = start
	l.requests++
	wait := start.Sub(now)
	l.waited += wait
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	l.logger.Debug().
		Dur("wait", wait).
		Msg("Rate limit delay")

	return l.sleep(ctx, wait)
}

// Done marks the end of a request. The next slot is measured from the later of
// the reservation and this moment.
func (l *Limiter) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now := l.now(); now.After(l.last) {
		l.last = now
	}
}

// Status returns a snapshot of the limiter state.
func (l *Limiter) Status() LimitStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := LimitStatus{
		MinDelayMs:    l.config.MinDelay.Milliseconds(),
		Requests:      l.requests,
		TotalWaitedMs: l.waited.Milliseconds(),
		LastRequest:   l.last,
	}
	if !l.last.IsZero() {
		status.NextAvailable = l.last.Add(l.config.MinDelay)
	}
	return status
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
