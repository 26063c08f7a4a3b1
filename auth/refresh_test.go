package auth_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/rideon-session/auth"
	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRefreshWithoutRefreshTokenMakesNoCall(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1"})

	require.False(t, f.manager.Refresh(context.Background()))

	refresh, _, _ := f.backend.counts()
	require.Zero(t, refresh)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshTotal.WithLabelValues(metrics.RefreshNoToken)))
}

func TestRefreshStoresRotatedToken(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1"})
	f.backend.set(func(b *backend) {
		b.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"access": "tok-2", "refresh": "ref-2"})
		}
	})

	require.True(t, f.manager.Refresh(context.Background()))

	s := f.stored(t)
	require.Equal(t, "tok-2", s.AccessToken)
	require.Equal(t, "ref-2", s.RefreshToken)
	require.Equal(t, []string{"ref-1"}, f.backend.refreshBodies)
}

func TestRefreshFailuresKeepTokens(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rejected", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted"})
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>"))
		}},
		{"empty access", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"refresh": "ref-2"})
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1"})
			f.backend.set(func(b *backend) { b.refreshHandler = tc.handler })

			require.False(t, f.manager.Refresh(context.Background()))

			s := f.stored(t)
			require.Equal(t, "tok-1", s.AccessToken)
			require.Equal(t, "ref-1", s.RefreshToken)
			require.Empty(t, f.navigator.list())
		})
	}
}

func TestRefreshTransportFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1"})
	f.backend.server.Close()

	require.False(t, f.manager.Refresh(context.Background()))
	require.Equal(t, "tok-1", f.stored(t).AccessToken)
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1"})

	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.backend.set(func(b *backend) {
		b.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			once.Do(func() { close(arrived) })
			<-release
			writeJSON(w, http.StatusOK, map[string]string{"access": "tok-2", "refresh": "ref-2"})
		}
	})

	const callers = 5
	results := make(chan bool, callers)
	go func() { results <- f.manager.Refresh(context.Background()) }()
	<-arrived

	for i := 1; i < callers; i++ {
		go func() { results <- f.manager.Refresh(context.Background()) }()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		require.True(t, <-results)
	}
	refresh, _, _ := f.backend.counts()
	require.Equal(t, 1, refresh)
	require.Equal(t, "tok-2", f.stored(t).AccessToken)
}

func TestLogoutDuringRefreshDiscardsResult(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1", UserEmail: "jane@example.com"})

	arrived := make(chan struct{})
	release := make(chan struct{})
	f.backend.set(func(b *backend) {
		b.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			close(arrived)
			<-release
			writeJSON(w, http.StatusOK, map[string]string{"access": "tok-2", "refresh": "ref-2"})
		}
	})

	result := make(chan bool, 1)
	go func() { result <- f.manager.Refresh(context.Background()) }()
	<-arrived

	f.manager.Logout(context.Background())
	close(release)

	require.False(t, <-result)
	f.requireCleared(t)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshTotal.WithLabelValues(metrics.RefreshDiscarded)))
}

func TestRefreshCallerCancellation(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1"})

	release := make(chan struct{})
	defer close(release)
	f.backend.set(func(b *backend) {
		b.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			<-release
			writeJSON(w, http.StatusOK, map[string]string{"access": "tok-2"})
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.False(t, f.manager.Refresh(ctx))
}

func TestUnauthorizedRequestCancelledDuringRefreshKeepsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.store(t, session.Session{AccessToken: "tok-1", RefreshToken: "ref-1", UserEmail: "jane@example.com"})

	release := make(chan struct{})
	f.backend.set(func(b *backend) {
		b.refreshHandler = func(w http.ResponseWriter, r *http.Request) {
			<-release
			writeJSON(w, http.StatusOK, map[string]string{"access": "tok-2"})
		}
		b.apiHandler = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, nil)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	resp, err := f.manager.Request(ctx, http.MethodGet, "/api/rides/", nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Nil(t, resp)

	close(release)
	require.Eventually(t, func() bool {
		return f.stored(t).AccessToken == "tok-2"
	}, time.Second, 10*time.Millisecond)

	s := f.stored(t)
	require.Equal(t, "ref-1", s.RefreshToken)
	require.Equal(t, "jane@example.com", s.UserEmail)
	require.Empty(t, f.navigator.list())
	_, logout, api := f.backend.counts()
	require.Zero(t, logout)
	require.Equal(t, 1, api)
}

func TestRefreshUsesConfiguredCSRFCookie(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, testCSRFToken, f.manager.CSRFToken())

	m, err := auth.NewManager(f.backend.server.URL, f.repo,
		auth.WithHTTPClient(&http.Client{Jar: f.jar}),
		auth.WithCSRFCookieName("other"),
	)
	require.NoError(t, err)
	require.Empty(t, m.CSRFToken())
}
