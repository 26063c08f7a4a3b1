// Package sessiontest holds the behaviour every session.Repo must share.
package sessiontest

import (
	"context"
	"testing"

	"github.com/jrsteele09/rideon-session/session"
	"github.com/stretchr/testify/require"
)

// RunRepoContract exercises repo through the session.Repo interface. newRepo
// must return an empty store on every call.
func RunRepoContract(t *testing.T, newRepo func(t *testing.T) session.Repo) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing field", func(t *testing.T) {
		repo := newRepo(t)
		v, ok, err := repo.Get(ctx, session.FieldAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, session.FieldAccessToken, "a.b.c"))
		require.NoError(t, repo.Set(ctx, session.FieldAccessToken, "d.e.f"))
		v, ok, err := repo.Get(ctx, session.FieldAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "d.e.f", v)
	})

	t.Run("no validation", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Set(ctx, session.FieldUserType, "not-a-type"))
		v, ok, err := repo.Get(ctx, session.FieldUserType)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "not-a-type", v)
	})

	t.Run("clear removes all fields", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, session.Save(ctx, repo, session.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			UserID:       "42",
			UserEmail:    "jane@example.com",
			UserType:     session.UserTypeDriver,
		}))
		require.NoError(t, repo.Clear(ctx))
		for _, f := range session.Fields {
			_, ok, err := repo.Get(ctx, f)
			require.NoError(t, err)
			require.False(t, ok, "field %s still present", f)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Clear(ctx))
		require.NoError(t, repo.Clear(ctx))
	})

	t.Run("load and save round trip", func(t *testing.T) {
		repo := newRepo(t)
		want := session.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			UserID:       "7",
			UserEmail:    "sam@example.com",
			UserType:     session.UserTypeRider,
		}
		require.NoError(t, session.Save(ctx, repo, want))
		got, err := session.Load(ctx, repo)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}
