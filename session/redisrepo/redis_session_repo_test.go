package redisrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/session/redisrepo"
	"github.com/jrsteele09/rideon-session/session/sessiontest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisRepoContract(t *testing.T) {
	sessiontest.RunRepoContract(t, func(t *testing.T) session.Repo {
		_, rdb := newRedis(t)
		return redisrepo.NewRedisSessionRepo(rdb, "test", "user")
	})
}

func TestHashLayout(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	repo := redisrepo.NewRedisSessionRepo(rdb, "", "")

	require.NoError(t, repo.Set(ctx, session.FieldUserEmail, "jane@example.com"))
	require.Equal(t, "jane@example.com", mr.HGet("rideon:session:default", "user_email"))
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	alice := redisrepo.NewRedisSessionRepo(rdb, "rideon", "alice")
	bob := redisrepo.NewRedisSessionRepo(rdb, "rideon", "bob")

	require.NoError(t, alice.Set(ctx, session.FieldAccessToken, "alice-token"))
	require.NoError(t, bob.Clear(ctx))

	v, ok, err := alice.Get(ctx, session.FieldAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice-token", v)
}

func TestTTLRefreshedOnSet(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	repo := redisrepo.NewRedisSessionRepo(rdb, "rideon", "ttl", redisrepo.WithTTL(time.Hour))

	require.NoError(t, repo.Set(ctx, session.FieldAccessToken, "a"))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, repo.Set(ctx, session.FieldRefreshToken, "r"))
	require.Equal(t, time.Hour, mr.TTL("rideon:ttl"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := repo.Get(ctx, session.FieldAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	repo := redisrepo.NewRedisSessionRepo(rdb, "rideon", "down")
	mr.Close()

	_, _, err = repo.Get(ctx, session.FieldAccessToken)
	require.ErrorIs(t, err, redisrepo.ErrRedisUnavailable)
	require.ErrorIs(t, repo.Clear(ctx), redisrepo.ErrRedisUnavailable)
}
