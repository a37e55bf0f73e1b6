package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/stretchr/testify/assert"
)

func TestSweeper_Run_EvictsAndStops(t *testing.T) {
	cfg := config.Default().RateLimit
	cfg.IdleTTL = time.Millisecond

	l := NewLimiter(cfg, logger.Nop())
	l.Allow("idle", models.TierAnonymous, "/api/tags")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s := NewSweeper(l, 5*time.Millisecond, logger.Nop())
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	s := NewSweeper(nil, 0, logger.Nop())
	assert.Equal(t, time.Minute, s.interval)
}
