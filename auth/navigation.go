package auth

import (
	"context"

	"github.com/jrsteele09/rideon-session/session"
)

const (
	RiderDashboardRoute  = "/dashboard/"
	DriverDashboardRoute = "/driver-dashboard/"
)

// Navigation is the visibility state of the site navigation.
type Navigation struct {
	Authenticated  bool   `json:"authenticated"`
	ShowGuestLinks bool   `json:"show_guest_links"`
	ShowUserMenu   bool   `json:"show_user_menu"`
	Username       string `json:"username,omitempty"`
	ShowDriverMenu bool   `json:"show_driver_menu"`
}

// NavigationFor derives the navigation state from a stored session.
func NavigationFor(s session.Session, authenticated bool) Navigation {
	if !authenticated {
		return Navigation{ShowGuestLinks: true}
	}
	return Navigation{
		Authenticated:  true,
		ShowUserMenu:   true,
		Username:       s.Username(),
		ShowDriverMenu: s.IsDriver(),
	}
}

// DashboardRoute returns the landing page for userType.
func DashboardRoute(userType session.UserType) string {
	if userType == session.UserTypeDriver {
		return DriverDashboardRoute
	}
	return RiderDashboardRoute
}

// IsAuthenticated reports whether the stored access token, or failing that an
// access_token cookie, has not yet expired. It does not contact the backend.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	accessToken, ok, err := m.repo.Get(ctx, session.FieldAccessToken)
	if err != nil {
		m.logger.Err(err).Msg("IsAuthenticated: failed to read access token")
	}
	if !ok || accessToken == "" {
		accessToken = m.cookie(AccessTokenCookieName)
	}
	if accessToken == "" {
		return false
	}
	return m.inspector.IsValid(accessToken)
}

// Navigation computes the navigation state from the store.
func (m *Manager) Navigation(ctx context.Context) (Navigation, error) {
	s, err := m.Session(ctx)
	if err != nil {
		return Navigation{ShowGuestLinks: true}, err
	}
	return NavigationFor(s, m.IsAuthenticated(ctx)), nil
}

// RedirectToDashboard navigates to the dashboard matching the stored user type.
func (m *Manager) RedirectToDashboard(ctx context.Context) {
	userType, _, err := m.repo.Get(ctx, session.FieldUserType)
	if err != nil {
		m.logger.Err(err).Msg("RedirectToDashboard: failed to read user type")
	}
	m.navigator.Navigate(DashboardRoute(session.UserType(userType)))
}

// Resume restores an existing session on start-up: it computes the
// navigation state and, when authenticated, refreshes the stored profile.
// A profile failure is logged and does not affect the returned navigation.
func (m *Manager) Resume(ctx context.Context) (Navigation, error) {
	nav, err := m.Navigation(ctx)
	if err != nil || !nav.Authenticated {
		return nav, err
	}
	if _, err := m.FetchProfile(ctx); err != nil {
		m.logger.Err(err).Msg("Resume: failed to fetch profile")
	}
	return m.Navigation(ctx)
}
