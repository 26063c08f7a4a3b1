package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshInterval is how often the refresh cycle inspects the stored access token.
func (Session) GetRefreshInterval() time.Duration {
	return getDuration("RIDEON_REFRESH_INTERVAL", 60*time.Second)
}

// GetRefreshThreshold is the remaining lifetime below which the refresh cycle renews the token.
func (Session) GetRefreshThreshold() time.Duration {
	return getDuration("RIDEON_REFRESH_THRESHOLD", 300*time.Second)
}

func (Session) GetHTTPTimeout() time.Duration {
	return getDuration("RIDEON_HTTP_TIMEOUT", 15*time.Second)
}

func (Session) GetCSRFCookieName() string {
	return GetEnv("RIDEON_CSRF_COOKIE", "csrftoken")
}
