package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration document. Every field maps onto
// the environment variable of the same setting; the environment wins.
type File struct {
	App struct {
		Name     string `yaml:"name"`
		Env      string `yaml:"env"`
		BaseURL  string `yaml:"base_url"`
		LogLevel string `yaml:"log_level"`
		Metrics  string `yaml:"metrics_addr"`
	} `yaml:"app"`
	Session struct {
		RefreshInterval  string `yaml:"refresh_interval"`
		RefreshThreshold string `yaml:"refresh_threshold"`
		HTTPTimeout      string `yaml:"http_timeout"`
		CSRFCookie       string `yaml:"csrf_cookie"`
	} `yaml:"session"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		KeyPath string `yaml:"key_path"`
		Encrypt *bool  `yaml:"encrypt"`
		Redis   struct {
			Addr      string `yaml:"addr"`
			Password  string `yaml:"password"`
			DB        *int   `yaml:"db"`
			Prefix    string `yaml:"prefix"`
			Namespace string `yaml:"namespace"`
			TTL       string `yaml:"ttl"`
		} `yaml:"redis"`
	} `yaml:"store"`
	DevServer struct {
		Port               string `yaml:"port"`
		SigningSecret      string `yaml:"signing_secret"`
		AccessTokenExpiry  string `yaml:"access_token_expiry"`
		RefreshTokenExpiry string `yaml:"refresh_token_expiry"`
		UserEmail          string `yaml:"user_email"`
		UserPassword       string `yaml:"user_password"`
		UserType           string `yaml:"user_type"`
	} `yaml:"dev_server"`
}

// LoadFile parses the YAML file at path and makes its values visible to GetEnv.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	setFileValues(f.values())
	return nil
}

func (f File) values() map[string]string {
	v := map[string]string{
		appNameVar:                 f.App.Name,
		envVar:                     f.App.Env,
		baseURLVar:                 f.App.BaseURL,
		logLevelVar:                f.App.LogLevel,
		metricsAddrVar:             f.App.Metrics,
		"RIDEON_REFRESH_INTERVAL":  f.Session.RefreshInterval,
		"RIDEON_REFRESH_THRESHOLD": f.Session.RefreshThreshold,
		"RIDEON_HTTP_TIMEOUT":      f.Session.HTTPTimeout,
		"RIDEON_CSRF_COOKIE":       f.Session.CSRFCookie,
		"RIDEON_STORE":             f.Store.Backend,
		"RIDEON_STORE_PATH":        f.Store.Path,
		"RIDEON_STORE_KEY":         f.Store.KeyPath,
		"REDIS_ADDR":               f.Store.Redis.Addr,
		"REDIS_PASSWORD":           f.Store.Redis.Password,
		"REDIS_PREFIX":             f.Store.Redis.Prefix,
		"REDIS_NAMESPACE":          f.Store.Redis.Namespace,
		"REDIS_TTL":                f.Store.Redis.TTL,
		"PORT":                     f.DevServer.Port,
		"SIGNING_SECRET":           f.DevServer.SigningSecret,
		"ACCESS_TOKEN_EXPIRY":      f.DevServer.AccessTokenExpiry,
		"REFRESH_TOKEN_EXPIRY":     f.DevServer.RefreshTokenExpiry,
		"DEV_USER_EMAIL":           f.DevServer.UserEmail,
		"DEV_USER_PASSWORD":        f.DevServer.UserPassword,
		"DEV_USER_TYPE":            f.DevServer.UserType,
	}
	if f.Store.Encrypt != nil {
		v["RIDEON_STORE_ENCRYPT"] = strconv.FormatBool(*f.Store.Encrypt)
	}
	if f.Store.Redis.DB != nil {
		v["REDIS_DB"] = strconv.Itoa(*f.Store.Redis.DB)
	}
	return v
}
