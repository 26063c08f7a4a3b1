package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	StoreConfig
	DevServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	GetMetricsAddr() string
}

// SessionConfig holds the client-side session manager tuning.
type SessionConfig interface {
	GetRefreshInterval() time.Duration
	GetRefreshThreshold() time.Duration
	GetHTTPTimeout() time.Duration
	GetCSRFCookieName() string
}

// StoreConfig selects and configures the token store backend.
type StoreConfig interface {
	GetStoreBackend() string
	GetStorePath() string
	GetStoreKeyPath() string
	GetStoreEncrypt() bool
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetRedisNamespace() string
	GetRedisTTL() time.Duration
}

// DevServerConfig configures the local stub backend.
type DevServerConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetDevUserEmail() string
	GetDevUserPassword() string
	GetDevUserType() string
}

type mainConfig struct {
	EnvVars
	Session
	Store
	DevServer
}

// New builds a Config from environment variables. When RIDEON_CONFIG names a
// YAML file its values are used for any variable left unset in the environment.
func New() (Config, error) {
	path := GetEnv(configFileVar, "")
	if path == "" {
		return mainConfig{}, nil
	}
	if err := LoadFile(path); err != nil {
		return nil, err
	}
	return mainConfig{}, nil
}
