package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/rideon-session/internal/config"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/session/filerepo"
	"github.com/jrsteele09/rideon-session/session/redisrepo"
	"github.com/jrsteele09/rideon-session/session/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// openStore builds the token store selected by c. The returned close
// function releases any connection the store holds.
func openStore(ctx context.Context, c config.StoreConfig) (session.Repo, func(), error) {
	switch c.GetStoreBackend() {
	case config.StoreBackendMemory:
		return repofake.NewFakeSessionRepo(), func() {}, nil

	case config.StoreBackendFile:
		var options []filerepo.Option
		if c.GetStoreEncrypt() {
			key, err := filerepo.GetOrCreateKey(c.GetStoreKeyPath())
			if err != nil {
				return nil, nil, fmt.Errorf("session key: %w", err)
			}
			options = append(options, filerepo.WithKey(key))
		}
		return filerepo.NewFileSessionRepo(c.GetStorePath(), options...), func() {}, nil

	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("%w: %v", redisrepo.ErrRedisUnavailable, err)
		}
		repo := redisrepo.NewRedisSessionRepo(client, c.GetRedisPrefix(), c.GetRedisNamespace(), redisrepo.WithTTL(c.GetRedisTTL()))
		return repo, func() {
			if err := client.Close(); err != nil {
				log.Err(err).Msg("failed to close redis client")
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", c.GetStoreBackend())
}
