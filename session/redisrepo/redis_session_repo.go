package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/rideon-session/session"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every client failure other than a missing field.
var ErrRedisUnavailable = errors.New("redis unavailable")

var _ session.Repo = (*RedisSessionRepo)(nil)

// RedisSessionRepo stores one session as a Redis hash at "<prefix>:<namespace>".
// The hash fields are the session field names.
type RedisSessionRepo struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

type Option func(*RedisSessionRepo)

// WithTTL expires the hash ttl after the last write.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisSessionRepo) {
		r.ttl = ttl
	}
}

func NewRedisSessionRepo(client redis.UniversalClient, prefix, namespace string, options ...Option) session.Repo {
	if prefix == "" {
		prefix = "rideon:session"
	}
	if namespace == "" {
		namespace = "default"
	}
	r := &RedisSessionRepo{
		client: client,
		key:    prefix + ":" + namespace,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisSessionRepo) Get(ctx context.Context, field session.Field) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key, string(field)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return v, true, nil
}

func (r *RedisSessionRepo) Set(ctx context.Context, field session.Field, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, string(field), value)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *RedisSessionRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
