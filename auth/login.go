package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of POST /auth/login/.
type LoginResponse struct {
	Message string `json:"message"`
	Tokens  struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
	Data struct {
		Email    string           `json:"email"`
		UserType session.UserType `json:"user_type"`
	} `json:"data"`
	Status string `json:"status"`
}

// LoginResult describes the session Login established.
type LoginResult struct {
	Message   string
	Email     string
	UserType  session.UserType
	Dashboard string
}

// Login authenticates with email and password and replaces the stored session
// with the returned tokens and identity. Any refresh still in flight for a
// previous session is discarded.
func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := m.postJSON(ctx, LoginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(err)
	}

	var body LoginResponse
	decodeErr := json.Unmarshal(data, &body)
	if resp.StatusCode != http.StatusOK {
		message := body.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, apperrors.Wrapf(apperrors.ErrLoginFailed, "%s", message)
	}
	if decodeErr != nil {
		return nil, apperrors.Wrapf(apperrors.ErrLoginFailed, "invalid response: %v", decodeErr)
	}
	if body.Tokens.Access == "" || body.Tokens.Refresh == "" {
		return nil, apperrors.Wrapf(apperrors.ErrLoginFailed, "response carried no tokens")
	}

	if body.Data.Email == "" {
		body.Data.Email = email
	}

	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	m.generation.Add(1)

	if err := m.repo.Clear(ctx); err != nil {
		return nil, apperrors.Wrapf(err, "clear previous session")
	}
	if err := session.Save(ctx, m.repo, session.Session{
		AccessToken:  body.Tokens.Access,
		RefreshToken: body.Tokens.Refresh,
		UserEmail:    body.Data.Email,
		UserType:     body.Data.UserType,
	}); err != nil {
		return nil, apperrors.Wrapf(err, "store session")
	}

	m.logger.Info().Str("email", body.Data.Email).Str("user_type", string(body.Data.UserType)).Msg("Logged in")
	return &LoginResult{
		Message:   body.Message,
		Email:     body.Data.Email,
		UserType:  body.Data.UserType,
		Dashboard: DashboardRoute(body.Data.UserType),
	}, nil
}
