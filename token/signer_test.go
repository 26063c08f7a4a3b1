package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/stretchr/testify/require"
)

func TestSignerStampsTokenType(t *testing.T) {
	now := time.Now()
	signer := token.NewHMACSigner("test-secret")

	raw, err := signer.Sign(token.TypeAccess, jwt.MapClaims{"exp": now.Add(time.Minute).Unix(), "user_id": "7"})
	require.NoError(t, err)

	claims, err := signer.Parse(raw, token.TypeAccess, func() time.Time { return now })
	require.NoError(t, err)
	require.Equal(t, token.TypeAccess, claims["token_type"])
	require.Equal(t, "7", claims["user_id"])

	_, err = signer.Parse(raw, token.TypeRefresh, func() time.Time { return now })
	require.ErrorIs(t, err, token.ErrWrongType)
}

func TestSignerRejects(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	signer := token.NewHMACSigner("test-secret")

	tests := []struct {
		name  string
		build func(t *testing.T) string
	}{
		{
			name: "other secret",
			build: func(t *testing.T) string {
				raw, err := token.NewHMACSigner("another-secret").Sign(token.TypeAccess, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})
				require.NoError(t, err)
				return raw
			},
		},
		{
			name: "HS512",
			build: func(t *testing.T) string {
				raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
					"token_type": token.TypeAccess,
					"exp":        now.Add(time.Minute).Unix(),
				}).SignedString([]byte("test-secret"))
				require.NoError(t, err)
				return raw
			},
		},
		{
			name: "no exp",
			build: func(t *testing.T) string {
				raw, err := signer.Sign(token.TypeAccess, jwt.MapClaims{"user_id": "7"})
				require.NoError(t, err)
				return raw
			},
		},
		{
			name: "expired",
			build: func(t *testing.T) string {
				raw, err := signer.Sign(token.TypeAccess, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
				require.NoError(t, err)
				return raw
			},
		},
		{
			name:  "garbage",
			build: func(t *testing.T) string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Parse(tt.build(t), token.TypeAccess, clock)
			require.ErrorIs(t, err, token.ErrTokenInvalid)
		})
	}
}
