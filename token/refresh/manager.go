package refresh

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownToken     = errors.New("token is not outstanding")
	ErrTokenBlacklisted = errors.New("token is blacklisted")
	ErrTokenExpired     = errors.New("token is expired")
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager tracks outstanding refresh tokens and their blacklist state.
type Manager struct {
	repo Repo
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo) *Manager {
	return &Manager{
		repo: repo,
	}
}

// Track records a newly issued refresh token.
func (m *Manager) Track(jti, userID string, expiresAt time.Time) error {
	if err := m.repo.Upsert(&OutstandingToken{
		JTI:       jti,
		UserID:    userID,
		IssuedAt:  NowTimeFunc(),
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Check returns the outstanding record for jti if it may still be exchanged.
func (m *Manager) Check(jti string) (*OutstandingToken, error) {
	rt, err := m.repo.Get(jti)
	if err != nil {
		return nil, ErrUnknownToken
	}
	if rt.Blacklisted() {
		return nil, ErrTokenBlacklisted
	}
	if NowTimeFunc().After(rt.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return rt, nil
}

// Blacklist marks jti as used. Blacklisting an already blacklisted token is
// not an error.
func (m *Manager) Blacklist(jti string) error {
	rt, err := m.repo.Get(jti)
	if err != nil {
		return ErrUnknownToken
	}
	if rt.Blacklisted() {
		return nil
	}
	now := NowTimeFunc()
	rt.BlacklistedAt = &now
	if err := m.repo.Upsert(rt); err != nil {
		return fmt.Errorf("failed to blacklist refresh token: %w", err)
	}
	return nil
}

// BlacklistUser blacklists every outstanding token of userID.
func (m *Manager) BlacklistUser(userID string) error {
	tokens, err := m.repo.ListByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	for _, rt := range tokens {
		if err := m.Blacklist(rt.JTI); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup removes records whose expiry has passed.
func (m *Manager) Cleanup() (int, error) {
	const pageSize = 100
	now := NowTimeFunc()
	var expired []string
	for offset := 0; ; offset += pageSize {
		page, err := m.repo.List(offset, pageSize)
		if err != nil {
			return 0, fmt.Errorf("failed to list refresh tokens: %w", err)
		}
		for _, rt := range page {
			if now.After(rt.ExpiresAt) {
				expired = append(expired, rt.JTI)
			}
		}
		if len(page) < pageSize {
			break
		}
	}
	for _, jti := range expired {
		if err := m.repo.Delete(jti); err != nil {
			return 0, fmt.Errorf("failed to delete refresh token: %w", err)
		}
	}
	return len(expired), nil
}
