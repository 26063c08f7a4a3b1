package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/stretchr/testify/require"
)

var inspectorNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return raw
}

func newInspector() *token.Inspector {
	return token.NewInspector(token.WithInspectorNowFunc(func() time.Time { return inspectorNow }))
}

func TestIsValid(t *testing.T) {
	inspector := newInspector()
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":` + "99999999999" + `}`))

	testCases := []struct {
		name     string
		token    string
		expected bool
	}{
		{"empty", "", false},
		{"one segment", "abc", false},
		{"two segments", "abc." + payload, false},
		{"four segments", "a." + payload + ".c.d", false},
		{"payload not base64", "a.!!!.c", false},
		{"payload not json", "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c", false},
		{"no exp", unsignedToken(t, jwt.MapClaims{"user_id": 1}), false},
		{"expired", unsignedToken(t, jwt.MapClaims{"exp": inspectorNow.Add(-time.Second).Unix()}), false},
		{"exp equals now", unsignedToken(t, jwt.MapClaims{"exp": inspectorNow.Unix()}), false},
		{"future", unsignedToken(t, jwt.MapClaims{"exp": inspectorNow.Add(time.Minute).Unix()}), true},
		{"garbage header future payload", "x." + payload + ".y", true},
		{"padded payload", "x." + base64.URLEncoding.EncodeToString([]byte(`{"exp":99999999999}`)) + ".y", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.Equal(t, tc.expected, inspector.IsValid(tc.token))
			})
		})
	}
}

func TestExpiresIn(t *testing.T) {
	inspector := newInspector()

	d, ok := inspector.ExpiresIn(unsignedToken(t, jwt.MapClaims{"exp": inspectorNow.Add(200 * time.Second).Unix()}))
	require.True(t, ok)
	require.Equal(t, 200*time.Second, d)

	d, ok = inspector.ExpiresIn(unsignedToken(t, jwt.MapClaims{"exp": inspectorNow.Add(-time.Minute).Unix()}))
	require.True(t, ok)
	require.Equal(t, -time.Minute, d)

	_, ok = inspector.ExpiresIn("not.a-token")
	require.False(t, ok)

	_, ok = inspector.ExpiresIn(unsignedToken(t, jwt.MapClaims{"user_id": "1"}))
	require.False(t, ok)
}

func TestDecode(t *testing.T) {
	inspector := newInspector()

	claims, err := inspector.Decode(unsignedToken(t, jwt.MapClaims{
		"exp":        inspectorNow.Add(time.Hour).Unix(),
		"iat":        inspectorNow.Unix(),
		"jti":        "abc123",
		"token_type": "access",
		"user_id":    42,
	}))
	require.NoError(t, err)
	require.Equal(t, inspectorNow.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	require.Equal(t, inspectorNow.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, "abc123", claims.ID)
	require.Equal(t, "access", claims.TokenType)
	require.Equal(t, "42", claims.UserID)

	_, err = inspector.Decode("a.b")
	require.ErrorIs(t, err, apperrors.ErrMalformedToken)
}
