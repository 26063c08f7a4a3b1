package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// HMACSigner signs and parses the HS256 tokens the RideOn backend issues.
// Every token carries a token_type claim of TypeAccess or TypeRefresh.
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

// Sign stamps claims with tokenType and signs them with HS256.
func (s *HMACSigner) Sign(tokenType string, claims jwt.MapClaims) (string, error) {
	claims["token_type"] = tokenType
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrapf(err, "sign %s token", tokenType)
	}
	return signed, nil
}

// Parse verifies the signature and exp of rawToken against now and checks its
// token_type. Tokens signed with any algorithm other than HS256 are rejected.
func (s *HMACSigner) Parse(rawToken, tokenType string, now func() time.Time) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, s.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.Wrap(ErrTokenInvalid, errString(err))
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrap(ErrTokenInvalid, "error extracting claims from token")
	}
	if got, _ := claims["token_type"].(string); got != tokenType {
		return nil, errors.Wrapf(ErrWrongType, "expected %s, got %q", tokenType, got)
	}
	return claims, nil
}

func (s *HMACSigner) key(*jwt.Token) (any, error) {
	return s.secret, nil
}

func errString(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
