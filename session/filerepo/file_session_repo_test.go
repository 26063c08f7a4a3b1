package filerepo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/session/filerepo"
	"github.com/jrsteele09/rideon-session/session/sessiontest"
	"github.com/stretchr/testify/require"
)

func TestPlainFileRepoContract(t *testing.T) {
	sessiontest.RunRepoContract(t, func(t *testing.T) session.Repo {
		return filerepo.NewFileSessionRepo(filepath.Join(t.TempDir(), "session.json"))
	})
}

func TestEncryptedFileRepoContract(t *testing.T) {
	sessiontest.RunRepoContract(t, func(t *testing.T) session.Repo {
		dir := t.TempDir()
		key, err := filerepo.GetOrCreateKey(filepath.Join(dir, "session.key"))
		require.NoError(t, err)
		return filerepo.NewFileSessionRepo(filepath.Join(dir, "session.json"), filerepo.WithKey(key))
	})
}

func TestEncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	key, err := filerepo.GetOrCreateKey(filepath.Join(dir, "session.key"))
	require.NoError(t, err)

	repo := filerepo.NewFileSessionRepo(path, filerepo.WithKey(key))
	require.NoError(t, repo.Set(ctx, session.FieldRefreshToken, "very-secret-refresh"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(data), "very-secret-refresh"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := filerepo.NewFileSessionRepo(path, filerepo.WithKey(key))
	v, ok, err := reopened.Get(ctx, session.FieldRefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "very-secret-refresh", v)
}

func TestWrongKeyFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	key1, err := filerepo.GetOrCreateKey(filepath.Join(dir, "one.key"))
	require.NoError(t, err)
	key2, err := filerepo.GetOrCreateKey(filepath.Join(dir, "two.key"))
	require.NoError(t, err)

	require.NoError(t, filerepo.NewFileSessionRepo(path, filerepo.WithKey(key1)).Set(ctx, session.FieldAccessToken, "x"))

	_, _, err = filerepo.NewFileSessionRepo(path, filerepo.WithKey(key2)).Get(ctx, session.FieldAccessToken)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decrypt")
}

func TestGetOrCreateKeyIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.key")

	first, err := filerepo.GetOrCreateKey(path)
	require.NoError(t, err)
	second, err := filerepo.GetOrCreateKey(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInvalidKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")
	require.NoError(t, os.WriteFile(path, []byte("c2hvcnQ="), 0o600))

	_, err := filerepo.GetOrCreateKey(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid key length")
}
