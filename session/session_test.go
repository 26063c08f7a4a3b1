package session_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/session/repofake"
	"github.com/jrsteele09/rideon-session/session/sessiontest"
	"github.com/stretchr/testify/require"
)

func TestFakeRepoContract(t *testing.T) {
	sessiontest.RunRepoContract(t, func(t *testing.T) session.Repo {
		return repofake.NewFakeSessionRepo()
	})
}

func TestUsername(t *testing.T) {
	testCases := []struct {
		email    string
		expected string
	}{
		{"jane.doe@example.com", "jane.doe"},
		{"noatsign", "noatsign"},
		{"", ""},
		{"@example.com", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			require.Equal(t, tc.expected, session.Session{UserEmail: tc.email}.Username())
		})
	}
}

func TestSaveSkipsEmptyFields(t *testing.T) {
	ctx := context.Background()
	repo := repofake.NewFakeSessionRepo()
	require.NoError(t, repo.Set(ctx, session.FieldRefreshToken, "keep"))

	require.NoError(t, session.Save(ctx, repo, session.Session{AccessToken: "new"}))

	s, err := session.Load(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, "new", s.AccessToken)
	require.Equal(t, "keep", s.RefreshToken)
	require.False(t, s.IsDriver())
}
