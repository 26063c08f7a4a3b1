package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	configFileVar  = "RIDEON_CONFIG"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	baseURLVar     = "RIDEON_BASE_URL"
	logLevelVar    = "LOG_LEVEL"
	metricsAddrVar = "METRICS_ADDR"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "RideOn")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetBaseURL returns the RideOn web application's base URL (e.g., "https://rideon.example.com").
// All API paths are joined onto it.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetMetricsAddr() string {
	return GetEnv(metricsAddrVar, "")
}

var (
	fileValues   map[string]string
	fileValuesMu sync.RWMutex
)

// GetEnv looks up envVar in the process environment, then in the loaded
// config file, then falls back to defaultValue.
func GetEnv(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	fileValuesMu.RLock()
	value, ok := fileValues[envVar]
	fileValuesMu.RUnlock()
	if ok && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt(envVar string, defaultValue int) int {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(envVar string, defaultValue bool) bool {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// homePath returns a path under ~/.rideon, or a relative .rideon directory
// when the home directory cannot be resolved.
func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".rideon", name)
	}
	return filepath.Join(home, ".rideon", name)
}

func setFileValues(values map[string]string) {
	fileValuesMu.Lock()
	defer fileValuesMu.Unlock()
	fileValues = values
}

