package config

import "time"

const (
	StoreBackendMemory = "memory"
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
)

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() string {
	return GetEnv("RIDEON_STORE", StoreBackendFile)
}

func (Store) GetStorePath() string {
	return GetEnv("RIDEON_STORE_PATH", homePath("session.json"))
}

func (Store) GetStoreKeyPath() string {
	return GetEnv("RIDEON_STORE_KEY", homePath("session.key"))
}

func (Store) GetStoreEncrypt() bool {
	return getBool("RIDEON_STORE_ENCRYPT", true)
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return getInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "rideon:session")
}

// GetRedisNamespace identifies which session hash this process owns.
func (Store) GetRedisNamespace() string {
	return GetEnv("REDIS_NAMESPACE", "default")
}

func (Store) GetRedisTTL() time.Duration {
	return getDuration("REDIS_TTL", 3*24*time.Hour)
}
