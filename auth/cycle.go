package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/rideon-session/session"
)

const (
	DefaultRefreshInterval  = 60 * time.Second
	DefaultRefreshThreshold = 300 * time.Second
)

// RefreshCycle renews the access token ahead of expiry on a fixed interval,
// independently of any request in flight. A failed periodic refresh is logged
// and leaves the session in place.
type RefreshCycle struct {
	manager   *Manager
	interval  time.Duration
	threshold time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshCycle creates a cycle. Zero durations select the defaults.
func NewRefreshCycle(manager *Manager, interval, threshold time.Duration) *RefreshCycle {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	return &RefreshCycle{
		manager:   manager,
		interval:  interval,
		threshold: threshold,
	}
}

// Check performs one tick: when the session is authenticated and the access
// token expires within the threshold, it refreshes. It reports whether a
// refresh was attempted and whether it succeeded.
func (c *RefreshCycle) Check(ctx context.Context) (attempted, refreshed bool) {
	m := c.manager
	if !m.IsAuthenticated(ctx) {
		return false, false
	}

	accessToken, ok, err := m.repo.Get(ctx, session.FieldAccessToken)
	if err != nil {
		m.logger.Err(err).Msg("RefreshCycle: failed to read access token")
		return false, false
	}
	if !ok || accessToken == "" {
		return false, false
	}

	remaining, ok := m.inspector.ExpiresIn(accessToken)
	if !ok {
		m.logger.Warn().Msg("RefreshCycle: could not decode access token expiry")
		return false, false
	}
	if remaining >= c.threshold {
		return false, false
	}

	m.logger.Debug().Dur("remaining", remaining).Msg("RefreshCycle: access token expiring, refreshing")
	if !m.Refresh(ctx) {
		m.logger.Warn().Dur("remaining", remaining).Msg("RefreshCycle: periodic refresh failed")
		return true, false
	}
	return true, true
}

// Run ticks every interval until ctx is done.
func (c *RefreshCycle) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Start runs the cycle in a goroutine. Starting a running cycle is a no-op.
func (c *RefreshCycle) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		c.Run(ctx)
	}()
}

// Stop cancels a running cycle and waits for it to exit.
func (c *RefreshCycle) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
