package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/session"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Refresh exchanges the stored refresh token for a new access token and
// reports whether it succeeded. It returns false without a network call when
// no refresh token is stored. Concurrent callers share a single exchange.
// Refresh never clears the store itself.
func (m *Manager) Refresh(ctx context.Context) bool {
	ok, _ := m.sharedRefresh(ctx)
	return ok
}

// sharedRefresh joins the in-flight exchange. When ctx ends first it returns
// ctx.Err() and the exchange carries on, storing its result for later callers.
func (m *Manager) sharedRefresh(ctx context.Context) (bool, error) {
	ch := m.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (m *Manager) refresh(ctx context.Context) bool {
	generation := m.generation.Load()

	refreshToken, ok, err := m.repo.Get(ctx, session.FieldRefreshToken)
	if err != nil {
		m.logger.Err(err).Msg("Refresh: failed to read refresh token")
		m.metrics.ObserveRefresh(metrics.RefreshFailure)
		return false
	}
	if !ok || refreshToken == "" {
		m.metrics.ObserveRefresh(metrics.RefreshNoToken)
		return false
	}

	resp, err := m.postJSON(ctx, RefreshPath, refreshRequest{Refresh: refreshToken})
	if err != nil {
		m.logger.Err(err).Msg("Refresh: token refresh request failed")
		m.metrics.ObserveRefresh(metrics.RefreshFailure)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		m.logger.Warn().Int("status", resp.StatusCode).Msg("Refresh: token refresh rejected")
		m.metrics.ObserveRefresh(metrics.RefreshFailure)
		return false
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Access == "" {
		m.logger.Err(err).Msg("Refresh: invalid token refresh response")
		m.metrics.ObserveRefresh(metrics.RefreshFailure)
		return false
	}

	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	if m.generation.Load() != generation {
		m.logger.Info().Msg("Refresh: session ended during refresh, discarding tokens")
		m.metrics.ObserveRefresh(metrics.RefreshDiscarded)
		return false
	}
	if err := m.repo.Set(ctx, session.FieldAccessToken, body.Access); err != nil {
		m.logger.Err(err).Msg("Refresh: failed to store access token")
		m.metrics.ObserveRefresh(metrics.RefreshFailure)
		return false
	}
	if body.Refresh != "" {
		if err := m.repo.Set(ctx, session.FieldRefreshToken, body.Refresh); err != nil {
			m.logger.Err(err).Msg("Refresh: failed to store rotated refresh token")
			m.metrics.ObserveRefresh(metrics.RefreshFailure)
			return false
		}
	}
	m.metrics.ObserveRefresh(metrics.RefreshSuccess)
	return true
}
