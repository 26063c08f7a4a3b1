package token

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/pkg/errors"
)

// Claims is the decoded payload of an access or refresh token.
type Claims struct {
	ExpiresAt time.Time // zero when the payload has no exp
	IssuedAt  time.Time
	ID        string
	TokenType string
	UserID    string
	Raw       jwt.MapClaims
}

// Inspector reads token payloads without verifying signatures. It drives
// refresh timing and UI state only and must never be used to authorize
// anything; the server remains the authority on whether a token is accepted.
type Inspector struct {
	parser  *jwt.Parser
	nowFunc func() time.Time
}

type InspectorOption func(*Inspector)

func WithInspectorNowFunc(now func() time.Time) InspectorOption {
	return func(i *Inspector) {
		i.nowFunc = now
	}
}

func NewInspector(options ...InspectorOption) *Inspector {
	i := &Inspector{
		parser:  jwt.NewParser(jwt.WithPaddingAllowed()),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// IsValid reports whether the payload decodes and its exp lies in the future.
func (i *Inspector) IsValid(rawToken string) bool {
	claims, err := i.Decode(rawToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.After(i.nowFunc())
}

// ExpiresIn returns the remaining lifetime of the token, negative once it has
// expired. ok is false when the payload cannot be decoded or has no exp.
func (i *Inspector) ExpiresIn(rawToken string) (time.Duration, bool) {
	claims, err := i.Decode(rawToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		return 0, false
	}
	return claims.ExpiresAt.Sub(i.nowFunc()), true
}

// Decode base64url-decodes the middle segment of a three segment token and
// parses it as JSON. Only the payload is inspected.
func (i *Inspector) Decode(rawToken string) (*Claims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}

	payload, err := i.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "decode payload: %v", err)
	}

	raw := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrapf(apperrors.ErrMalformedToken, "parse payload: %v", err)
	}

	claims := &Claims{Raw: raw}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.ID, _ = raw["jti"].(string)
	claims.TokenType, _ = raw["token_type"].(string)
	claims.UserID = claimString(raw["user_id"])
	return claims, nil
}

// claimString renders string and numeric ids alike; Django issues integer ids.
func claimString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	}
	return ""
}
