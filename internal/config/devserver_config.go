package config

import (
	"fmt"
	"time"
)

type DevServer struct{}

var _ DevServerConfig = DevServer{}

func (DevServer) GetPort() string {
	port := GetEnv("PORT", "8000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (DevServer) GetSigningSecret() string {
	return GetEnv("SIGNING_SECRET", "rideon-dev-secret")
}

func (DevServer) GetAccessTokenExpiry() time.Duration {
	return getDuration("ACCESS_TOKEN_EXPIRY", 7*time.Hour)
}

func (DevServer) GetRefreshTokenExpiry() time.Duration {
	return getDuration("REFRESH_TOKEN_EXPIRY", 3*24*time.Hour) // 3 days
}

func (DevServer) GetDevUserEmail() string {
	return GetEnv("DEV_USER_EMAIL", "rider@rideon.local")
}

func (DevServer) GetDevUserPassword() string {
	return GetEnv("DEV_USER_PASSWORD", "Password123")
}

func (DevServer) GetDevUserType() string {
	return GetEnv("DEV_USER_TYPE", "RIDER")
}
