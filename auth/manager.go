package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

// Paths of the RideOn backend, relative to the base URL.
const (
	LoginPath   = "/auth/login/"
	LogoutPath  = "/auth/logout/"
	RefreshPath = "/api/token/refresh/"
	ProfilePath = "/profile/"
	HomeRoute   = "/"

	DefaultCSRFCookieName = "csrftoken"
	AccessTokenCookieName = "access_token"

	HeaderCSRFToken     = "X-CSRFToken"
	HeaderCorrelationID = "X-Correlation-ID"

	defaultTimeout = 15 * time.Second
	refreshKey     = "refresh"
)

// Navigator performs route changes on behalf of the session manager.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// Manager is the single owner of the client session. All reads and writes of
// the session store by the request wrapper, refresh and logout go through it.
// It is safe for concurrent use.
type Manager struct {
	baseURL        *url.URL
	repo           session.Repo
	client         *http.Client
	inspector      *token.Inspector
	navigator      Navigator
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	csrfCookieName string

	refreshGroup singleflight.Group
	generation   atomic.Uint64 // bumped by Logout; stale refresh results are dropped
	writeLock    sync.Mutex    // serializes multi-field store writes
}

type ManagerOption func(*Manager)

// WithHTTPClient replaces the default client. The client's Jar is used to
// look up the CSRF cookie.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.client = client
	}
}

func WithInspector(inspector *token.Inspector) ManagerOption {
	return func(m *Manager) {
		m.inspector = inspector
	}
}

func WithNavigator(navigator Navigator) ManagerOption {
	return func(m *Manager) {
		m.navigator = navigator
	}
}

func WithMetrics(mtr *metrics.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = mtr
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithCSRFCookieName(name string) ManagerOption {
	return func(m *Manager) {
		m.csrfCookieName = name
	}
}

// NewManager creates a session manager for the backend at baseURL using repo
// as its token store.
func NewManager(baseURL string, repo session.Repo, options ...ManagerOption) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("[NewManager] session repo is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[NewManager] invalid base url %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	m := &Manager{
		baseURL:        u,
		repo:           repo,
		logger:         log.Logger,
		csrfCookieName: DefaultCSRFCookieName,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "[NewManager] cookie jar")
		}
		m.client = &http.Client{Jar: jar, Timeout: defaultTimeout}
	}
	if m.inspector == nil {
		m.inspector = token.NewInspector()
	}
	if m.navigator == nil {
		m.navigator = NavigatorFunc(func(route string) {
			m.logger.Debug().Str("route", route).Msg("navigate")
		})
	}
	return m, nil
}

// URL resolves path against the base URL.
func (m *Manager) URL(path string) string {
	u := *m.baseURL
	u.Path = m.baseURL.Path + path
	return u.String()
}

// Client returns the HTTP client used for all backend calls.
func (m *Manager) Client() *http.Client {
	return m.client
}

// Inspector returns the token inspector used for validity checks.
func (m *Manager) Inspector() *token.Inspector {
	return m.inspector
}

// Session returns a snapshot of the stored session fields.
func (m *Manager) Session(ctx context.Context) (session.Session, error) {
	return session.Load(ctx, m.repo)
}

// CSRFToken returns the value of the CSRF cookie for the backend, or "" when
// the jar holds none.
func (m *Manager) CSRFToken() string {
	return m.cookie(m.csrfCookieName)
}

func (m *Manager) cookie(name string) string {
	if m.client.Jar == nil {
		return ""
	}
	for _, c := range m.client.Jar.Cookies(m.baseURL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// setDefaultHeader sets key unless the caller already supplied a value.
func setDefaultHeader(h http.Header, key, value string) {
	if value == "" {
		return
	}
	if _, ok := h[http.CanonicalHeaderKey(key)]; ok {
		return
	}
	h.Set(key, value)
}

// postJSON sends an unauthenticated JSON POST carrying the CSRF header.
func (m *Manager) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL(path), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	setDefaultHeader(req.Header, HeaderCSRFToken, m.CSRFToken())
	req.Header.Set(HeaderCorrelationID, uuid.NewString())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	return resp, nil
}
