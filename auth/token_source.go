package auth

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/session"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Token implements oauth2.TokenSource over the session store. An expired or
// undecodable access token is refreshed first. It returns ErrNoToken when no
// usable token can be produced.
func (m *Manager) Token() (*oauth2.Token, error) {
	return m.TokenContext(context.Background())
}

func (m *Manager) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	accessToken, ok, err := m.repo.Get(ctx, session.FieldAccessToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, "read access token")
	}
	if !ok || !m.inspector.IsValid(accessToken) {
		if !m.Refresh(ctx) {
			return nil, apperrors.ErrNoToken
		}
		accessToken, _, err = m.repo.Get(ctx, session.FieldAccessToken)
		if err != nil {
			return nil, apperrors.Wrapf(err, "read access token")
		}
	}

	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if claims, err := m.inspector.Decode(accessToken); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

// HTTPClient returns a client that authenticates with the stored access
// token through golang.org/x/oauth2. It does not perform the 401 retry of Do.
func (m *Manager) HTTPClient(ctx context.Context) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, m))
}
