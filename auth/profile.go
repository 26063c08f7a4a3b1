package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/users"
)

// FetchProfile loads the signed-in user's profile through the authenticated
// request path and stores the user's id and type, plus the email when the
// profile carries one. When the session ends or changes hands while the
// request is in flight nothing is stored and ErrProfileUnavailable is returned.
func (m *Manager) FetchProfile(ctx context.Context) (*users.Profile, error) {
	generation := m.generation.Load()
	resp, err := m.Request(ctx, http.MethodGet, ProfilePath, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, apperrors.Wrapf(apperrors.ErrProfileUnavailable, "status %d", resp.StatusCode)
	}

	var profile users.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrProfileUnavailable, "decode profile: %v", err)
	}

	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	if m.generation.Load() != generation {
		m.logger.Info().Msg("FetchProfile: session ended during request, discarding profile")
		return nil, apperrors.Wrapf(apperrors.ErrProfileUnavailable, "session ended")
	}
	if err := session.Save(ctx, m.repo, session.Session{
		UserID:    string(profile.ID),
		UserEmail: profile.Email,
		UserType:  session.UserType(profile.UserType),
	}); err != nil {
		return nil, apperrors.Wrapf(err, "store profile")
	}
	return &profile, nil
}
