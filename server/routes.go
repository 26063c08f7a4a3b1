package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.CSRFMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.CSRFMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteTokenRefresh, ChainMiddleware(s.TokenRefreshHandler(), s.APIMiddleware(s.CSRFMiddleware)...))

	// Protected routes (require a valid access token)
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireAuth())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
