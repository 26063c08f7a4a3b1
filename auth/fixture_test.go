package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/rideon-session/auth"
	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/session/repofake"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testCSRFToken = "csrf-abc"

// backend is a scripted RideOn API. Handlers may be swapped per test.
type backend struct {
	server *httptest.Server

	mu             sync.Mutex
	refreshCalls   int
	logoutCalls    int
	apiCalls       int
	apiHeaders     []http.Header
	refreshBodies  []string
	logoutBodies   []string
	refreshHandler http.HandlerFunc
	logoutHandler  http.HandlerFunc
	apiHandler     http.HandlerFunc
	loginHandler   http.HandlerFunc
	profileHandler http.HandlerFunc
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc(auth.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.refreshCalls++
		b.refreshBodies = append(b.refreshBodies, body["refresh"])
		h := b.refreshHandler
		b.mu.Unlock()
		if h == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h(w, r)
	})
	mux.HandleFunc(auth.LogoutPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.logoutCalls++
		b.logoutBodies = append(b.logoutBodies, body["refresh"])
		h := b.logoutHandler
		b.mu.Unlock()
		if h == nil {
			writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
			return
		}
		h(w, r)
	})
	mux.HandleFunc(auth.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		h := b.loginHandler
		b.mu.Unlock()
		h(w, r)
	})
	mux.HandleFunc(auth.ProfilePath, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		h := b.profileHandler
		b.mu.Unlock()
		h(w, r)
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.apiCalls++
		b.apiHeaders = append(b.apiHeaders, r.Header.Clone())
		h := b.apiHandler
		b.mu.Unlock()
		h(w, r)
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *backend) counts() (refresh, logout, api int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls, b.logoutCalls, b.apiCalls
}

func (b *backend) headers(i int) http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apiHeaders[i]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type navigations struct {
	mu     sync.Mutex
	routes []string
}

func (n *navigations) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *navigations) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type testFixture struct {
	backend   *backend
	repo      session.Repo
	navigator *navigations
	metrics   *metrics.Metrics
	jar       http.CookieJar
	now       time.Time
	manager   *auth.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	b := newBackend(t)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(b.server.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "csrftoken", Value: testCSRFToken, Path: "/"}})

	f := &testFixture{
		backend:   b,
		repo:      repofake.NewFakeSessionRepo(),
		navigator: &navigations{},
		metrics:   metrics.New("test"),
		jar:       jar,
		now:       time.Now(),
	}

	f.manager, err = auth.NewManager(b.server.URL, f.repo,
		auth.WithHTTPClient(&http.Client{Jar: jar, Timeout: 5 * time.Second}),
		auth.WithNavigator(f.navigator),
		auth.WithMetrics(f.metrics),
		auth.WithLogger(zerolog.Nop()),
		auth.WithInspector(token.NewInspector(token.WithInspectorNowFunc(func() time.Time { return f.now }))),
	)
	require.NoError(t, err)
	return f
}

// tokenExpiringIn returns an HS256 token whose exp is d after the fixture clock.
func (f *testFixture) tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"exp":        f.now.Add(d).Unix(),
		"user_id":    1,
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return raw
}

func (f *testFixture) store(t *testing.T, s session.Session) {
	t.Helper()
	require.NoError(t, session.Save(context.Background(), f.repo, s))
}

func (f *testFixture) stored(t *testing.T) session.Session {
	t.Helper()
	s, err := session.Load(context.Background(), f.repo)
	require.NoError(t, err)
	return s
}

func (f *testFixture) requireCleared(t *testing.T) {
	t.Helper()
	for _, field := range session.Fields {
		_, ok, err := f.repo.Get(context.Background(), field)
		require.NoError(t, err)
		require.False(t, ok, "field %s not cleared", field)
	}
}
