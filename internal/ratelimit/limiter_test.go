// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced clock shared by a limiter under test.
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

func newTestLimiter(t *testing.T, mutate func(*config.RateLimit)) (*Limiter, *fakeClock) {
	t.Helper()

	cfg := config.Default().RateLimit
	if mutate != nil {
		mutate(&cfg)
	}

	clock := &fakeClock{now: testStart}
	l := NewLimiter(cfg, logger.Nop())
	l.now = clock.Now
	return l, clock
}

// ---------------------------------------------------------------------------
// Allow
// ---------------------------------------------------------------------------

func TestLimiter_Allow_ExactlyCapacityThenDenied(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	key := BuildKey("", "10.0.0.1", "/api/tags")

	for i := range 10 {
		d := l.Allow(key, models.TierAnonymous, "/api/tags")
		require.Truef(t, d.Allowed, "request %d should pass", i+1)
		assert.Equal(t, 10, d.Limit)
		assert.Equal(t, 9-i, d.Remaining)
	}

	d := l.Allow(key, models.TierAnonymous, "/api/tags")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	// 60 per minute refills one token per second
	assert.Equal(t, time.Second, d.RetryAfter)
	assert.Equal(t, testStart.Add(time.Second), d.ResetAt)
}

func TestLimiter_Allow_LoginScenario(t *testing.T) {
	// Eleven logins from one anonymous address: the override gives a bucket
	// of three, so only the first three go through.
	l, _ := newTestLimiter(t, nil)
	key := BuildKey("", "203.0.113.5", config.EndpointLogin)

	var allowed, denied int
	for range 11 {
		if l.Allow(key, models.TierAnonymous, config.EndpointLogin).Allowed {
			allowed++
		} else {
			denied++
		}
	}

	assert.Equal(t, 3, allowed)
	assert.Equal(t, 8, denied)
}

func TestLimiter_Allow_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, nil)
	key := BuildKey("", "10.0.0.1", config.EndpointLogin)

	for range 3 {
		require.True(t, l.Allow(key, models.TierAnonymous, config.EndpointLogin).Allowed)
	}
	d := l.Allow(key, models.TierAnonymous, config.EndpointLogin)
	require.False(t, d.Allowed)
	// 10 per minute is one token every 6s
	assert.Equal(t, 6*time.Second, d.RetryAfter)

	clock.Advance(5 * time.Second)
	assert.False(t, l.Allow(key, models.TierAnonymous, config.EndpointLogin).Allowed)

	clock.Advance(time.Second)
	assert.True(t, l.Allow(key, models.TierAnonymous, config.EndpointLogin).Allowed)

	clock.Advance(time.Hour)
	assert.Equal(t, 3, l.Remaining(key), "refill never exceeds capacity")
}

func TestLimiter_Allow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	a := BuildKey("alice", "10.0.0.1", config.EndpointLogin)
	b := BuildKey("bob", "10.0.0.1", config.EndpointLogin)

	for range 3 {
		l.Allow(a, models.TierAuthenticated, config.EndpointLogin)
	}

	assert.False(t, l.Allow(a, models.TierAuthenticated, config.EndpointLogin).Allowed)
	assert.True(t, l.Allow(b, models.TierAuthenticated, config.EndpointLogin).Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Allow_PolicyFixedAtCreation(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	key := "shared"

	l.Allow(key, models.TierAdmin, "/api/tags")
	info, ok := l.Info(key)
	require.True(t, ok)

	l.Allow(key, models.TierAnonymous, "/api/tags")
	after, _ := l.Info(key)
	assert.Equal(t, info.Capacity, after.Capacity)
	assert.Equal(t, "admin", after.Tier)
}

func TestLimiter_Allow_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	key := BuildKey("alice", "10.0.0.1", "/api/tags")

	const goroutines = 100

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
		start   = make(chan struct{})
	)

	for range goroutines {
		wg.Go(func() {
			<-start
			if l.Allow(key, models.TierAuthenticated, "/api/tags").Allowed {
				allowed.Add(1)
			}
		})
	}

	close(start)
	wg.Wait()

	// the clock is frozen, so no refill happens while the goroutines run
	assert.Equal(t, int64(20), allowed.Load())
	assert.Equal(t, 1, l.Len())
}

// ---------------------------------------------------------------------------
// Remaining / Reset / Info
// ---------------------------------------------------------------------------

func TestLimiter_Remaining_UnknownKey(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	assert.Equal(t, 0, l.Remaining("ip:nobody:endpoint:/api/notes"))
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	key := BuildKey("", "10.0.0.1", config.EndpointRegister)

	require.True(t, l.Allow(key, models.TierAnonymous, config.EndpointRegister).Allowed)
	require.False(t, l.Allow(key, models.TierAnonymous, config.EndpointRegister).Allowed)

	l.Reset(key)
	assert.Equal(t, 0, l.Len())
	_, ok := l.Info(key)
	assert.False(t, ok)

	assert.True(t, l.Allow(key, models.TierAnonymous, config.EndpointRegister).Allowed)

	// resetting an unknown key is a no-op
	l.Reset("missing")
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_Info(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	key := BuildKey("alice", "10.0.0.1", config.EndpointNotes)

	l.Allow(key, models.TierAuthenticated, config.EndpointNotes)
	l.Allow(key, models.TierAuthenticated, config.EndpointNotes)

	info, ok := l.Info(key)
	require.True(t, ok)
	assert.Equal(t, models.RateLimitInfo{
		Key:            key,
		Endpoint:       config.EndpointNotes,
		Tier:           "authenticated",
		Remaining:      18,
		Capacity:       20,
		RefillTokens:   100,
		RefillInterval: time.Minute,
		RefillSeconds:  60,
	}, info)
}

// ---------------------------------------------------------------------------
// Sweep
// ---------------------------------------------------------------------------

func TestLimiter_Sweep_IdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, nil)

	l.Allow("old", models.TierAnonymous, "/api/tags")
	clock.Advance(30 * time.Minute)
	l.Allow("fresh", models.TierAnonymous, "/api/tags")
	clock.Advance(31 * time.Minute)

	removed := l.Sweep(clock.Now())

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
	_, ok := l.Info("fresh")
	assert.True(t, ok)
	_, ok = l.Info("old")
	assert.False(t, ok)
}

func TestLimiter_Sweep_MaxBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, func(cfg *config.RateLimit) {
		cfg.MaxBuckets = 2
	})

	for _, key := range []string{"a", "b", "c", "d"} {
		l.Allow(key, models.TierAnonymous, "/api/tags")
		clock.Advance(time.Second)
	}

	removed := l.Sweep(clock.Now())

	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, l.Len())
	for _, key := range []string{"c", "d"} {
		_, ok := l.Info(key)
		assert.Truef(t, ok, "%s should survive", key)
	}
}

func TestLimiter_Sweep_NothingToDo(t *testing.T) {
	l, clock := newTestLimiter(t, nil)
	l.Allow("a", models.TierAnonymous, "/api/tags")

	assert.Equal(t, 0, l.Sweep(clock.Now()))
	assert.Equal(t, 1, l.Len())
}
