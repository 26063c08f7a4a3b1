package auth

import (
	"context"
	"io"

	"github.com/jrsteele09/rideon-session/session"
)

// Logout ends the session. When a refresh token is stored the backend is told
// to blacklist it; that call is best effort and its outcome only logged. The
// store is then cleared and the navigator sent home. Logout is idempotent.
//
// A refresh that is in flight when Logout starts has its result discarded.
func (m *Manager) Logout(ctx context.Context) {
	m.generation.Add(1)

	refreshToken, ok, err := m.repo.Get(ctx, session.FieldRefreshToken)
	if err != nil {
		m.logger.Err(err).Msg("Logout: failed to read refresh token")
	}
	if ok && refreshToken != "" {
		resp, err := m.postJSON(ctx, LogoutPath, refreshRequest{Refresh: refreshToken})
		if err != nil {
			m.logger.Err(err).Msg("Logout: failed to notify backend")
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			m.logger.Debug().Int("status", resp.StatusCode).Msg("Logout: backend notified")
		}
	}

	m.writeLock.Lock()
	m.generation.Add(1)
	if err := m.repo.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Err(err).Msg("Logout: failed to clear session store")
	}
	m.writeLock.Unlock()

	m.metrics.ObserveLogout()
	m.logger.Info().Msg("Logged out")
	m.navigator.Navigate(HomeRoute)
}
