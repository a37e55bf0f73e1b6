package ratelimit

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
)

// Sweeper periodically evicts idle buckets from a Limiter.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
	logger   *logger.Logger
}

// NewSweeper creates a Sweeper that calls limiter.Sweep every interval.
func NewSweeper(limiter *Limiter, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{limiter: limiter, interval: interval, logger: log}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("rate limit sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rate limit sweeper stopped")
			return
		case now := <-ticker.C:
			if n := s.limiter.Sweep(now); n > 0 {
				s.logger.Debug().
					Int("removed", n).
					Int("live", s.limiter.Len()).
					Msg("idle rate limit buckets evicted")
			}
		}
	}
}
