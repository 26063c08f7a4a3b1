package server

const (
	RouteHome         = "/"
	RouteAuthLogin    = "/auth/login/"
	RouteAuthLogout   = "/auth/logout/"
	RouteTokenRefresh = "/api/token/refresh/"
	RouteProfile      = "/profile/"
	RouteMetrics      = "/metrics"
)
