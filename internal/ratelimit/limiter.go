// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/models"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// Limit is the bucket capacity.
	Limit     int
	Remaining int
	// RetryAfter is how long until the next token, zero when Remaining > 0.
	RetryAfter time.Duration
	// ResetAt is when the next token becomes available.
	ResetAt time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	limit    Limit
	tier     models.Tier
	endpoint string
	// lastSeen is unix nanoseconds of the latest Allow.
	lastSeen atomic.Int64
}

func (b *bucket) remaining(now time.Time) int {
	return max(int(math.Floor(b.limiter.TokensAt(now))), 0)
}

// Limiter keeps one token bucket per key.
//
// Buckets are stored in a sync.Map, so callers on distinct keys never
// contend on a shared lock; the consume itself is serialized per key inside
// rate.Limiter.
type Limiter struct {
	policy  *Policy
	buckets sync.Map // string -> *bucket
	size    atomic.Int64

	idleTTL    time.Duration
	maxBuckets int

	now    func() time.Time
	logger *logger.Logger
}

// NewLimiter creates a Limiter using the policy and eviction settings of cfg.
func NewLimiter(cfg config.RateLimit, log *logger.Logger) *Limiter {
	return &Limiter{
		policy:     NewPolicy(cfg),
		idleTTL:    cfg.IdleTTL,
		maxBuckets: cfg.MaxBuckets,
		now:        time.Now,
		logger:     log,
	}
}

// Allow consumes one token from the bucket for key, creating the bucket from
// the policy for tier and endpoint on first use.
func (l *Limiter) Allow(key string, tier models.Tier, endpoint string) Decision {
	now := l.now()
	b := l.load(key, tier, endpoint)
	b.lastSeen.Store(now.UnixNano())

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	decision := Decision{
		Allowed:   allowed,
		Limit:     b.limit.Capacity,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   now,
	}

	if tokens < 1 {
		wait := nextTokenIn(tokens, b.limiter.Limit())
		decision.RetryAfter = wait
		decision.ResetAt = now.Add(wait)
	}

	return decision
}

// Remaining returns the whole tokens left for key, or 0 for an unknown key.
func (l *Limiter) Remaining(key string) int {
	v, ok := l.buckets.Load(key)
	if !ok {
		return 0
	}
	return v.(*bucket).remaining(l.now())
}

// Reset drops the bucket for key; the next request starts from a full bucket.
func (l *Limiter) Reset(key string) {
	if _, ok := l.buckets.LoadAndDelete(key); ok {
		l.size.Add(-1)
	}
}

// Info describes the bucket for key. ok is false when no bucket exists.
func (l *Limiter) Info(key string) (info models.RateLimitInfo, ok bool) {
	v, ok := l.buckets.Load(key)
	if !ok {
		return models.RateLimitInfo{}, false
	}

	b := v.(*bucket)
	return models.RateLimitInfo{
		Key:            key,
		Endpoint:       b.endpoint,
		Tier:           b.tier.String(),
		Remaining:      b.remaining(l.now()),
		Capacity:       b.limit.Capacity,
		RefillTokens:   b.limit.RefillTokens,
		RefillInterval: b.limit.RefillInterval,
		RefillSeconds:  int64(b.limit.RefillInterval / time.Second),
	}, true
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	return int(l.size.Load())
}

// Sweep drops buckets idle for longer than the idle TTL and then, if more
// than the configured maximum remain, the least recently used ones. It
// returns the number of buckets removed.
func (l *Limiter) Sweep(now time.Time) int {
	type entry struct {
		key      string
		b        *bucket
		lastSeen int64
	}

	var (
		removed int
		live    []entry
	)

	l.buckets.Range(func(k, v any) bool {
		b := v.(*bucket)
		seen := b.lastSeen.Load()
		if l.idleTTL > 0 && now.Sub(time.Unix(0, seen)) > l.idleTTL {
			if l.buckets.CompareAndDelete(k, v) {
				l.size.Add(-1)
				removed++
			}
			return true
		}
		live = append(live, entry{key: k.(string), b: b, lastSeen: seen})
		return true
	})

	if l.maxBuckets <= 0 || len(live) <= l.maxBuckets {
		return removed
	}

	slices.SortFunc(live, func(a, b entry) int {
		switch {
		case a.lastSeen < b.lastSeen:
			return -1
		case a.lastSeen > b.lastSeen:
			return 1
		}
		return 0
	})

	for _, e := range live[:len(live)-l.maxBuckets] {
		if l.buckets.CompareAndDelete(e.key, e.b) {
			l.size.Add(-1)
			removed++
		}
	}

	return removed
}

func (l *Limiter) load(key string, tier models.Tier, endpoint string) *bucket {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*bucket)
	}

	limit := l.policy.LimitFor(tier, endpoint)
	fresh := &bucket{
		limiter:  rate.NewLimiter(limit.Rate(), limit.Capacity),
		limit:    limit,
		tier:     tier,
		endpoint: endpoint,
	}
	fresh.lastSeen.Store(l.now().UnixNano())

	v, loaded := l.buckets.LoadOrStore(key, fresh)
	if !loaded {
		l.size.Add(1)
		l.logger.Debug().
			Str("key", key).
			Str("tier", tier.String()).
			Int("capacity", limit.Capacity).
			Int("refill_tokens", limit.RefillTokens).
			Msg("rate limit bucket created")
	}
	return v.(*bucket)
}

// nextTokenIn returns how long a bucket holding tokens needs to reach one
// whole token at refill rate r.
func nextTokenIn(tokens float64, r rate.Limit) time.Duration {
	if r <= 0 {
		return time.Duration(math.MaxInt64)
	}
	missing := 1 - tokens
	return time.Duration(math.Ceil(missing / float64(r) * float64(time.Second)))
}
