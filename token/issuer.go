package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/rideon-session/token/refresh"
	"github.com/pkg/errors"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrWrongType    = errors.New("token has wrong type")
)

// Pair is the access/refresh token pair returned to clients.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Issuer mints and verifies HS256 tokens shaped like those of
// djangorestframework-simplejwt. Refresh tokens are tracked so they can be
// blacklisted on rotation and on logout.
type Issuer struct {
	signer             *HMACSigner
	refreshManager     *refresh.Manager
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	rotateRefresh      bool
	nowFunc            func() time.Time
}

type IssuerOption func(*Issuer)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTokenExpiry = accessTokenExpiry
		i.refreshTokenExpiry = refreshTokenExpiry
	}
}

// WithRotation controls whether a refresh exchange returns a new refresh
// token and blacklists the old one.
func WithRotation(rotate bool) IssuerOption {
	return func(i *Issuer) {
		i.rotateRefresh = rotate
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(signer *HMACSigner, refreshManager *refresh.Manager, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:         signer,
		refreshManager: refreshManager,
		rotateRefresh:  true,
	}

	for _, opt := range options {
		opt(i)
	}

	if i.accessTokenExpiry == 0 {
		i.accessTokenExpiry = 7 * time.Hour
	}
	if i.refreshTokenExpiry == 0 {
		i.refreshTokenExpiry = 72 * time.Hour
	}
	if i.nowFunc == nil {
		i.nowFunc = time.Now
	}
	return i
}

func (i *Issuer) CreateAccessToken(userID string) (string, error) {
	now := i.nowFunc()
	claims := jwt.MapClaims{
		"exp":     now.Add(i.accessTokenExpiry).Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
		"user_id": userID,
	}
	return i.signer.Sign(TypeAccess, claims)
}

func (i *Issuer) CreateRefreshToken(userID string) (string, error) {
	now := i.nowFunc()
	exp := now.Add(i.refreshTokenExpiry)
	jti := uuid.New().String()
	claims := jwt.MapClaims{
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
		"jti":     jti,
		"user_id": userID,
	}
	signed, err := i.signer.Sign(TypeRefresh, claims)
	if err != nil {
		return "", err
	}
	if err := i.refreshManager.Track(jti, userID, exp); err != nil {
		return "", errors.Wrap(err, "Issuer.CreateRefreshToken Track")
	}
	return signed, nil
}

// CreatePair issues a fresh access and refresh token for userID.
func (i *Issuer) CreatePair(userID string) (*Pair, error) {
	refreshToken, err := i.CreateRefreshToken(userID)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.CreatePair CreateRefreshToken")
	}
	accessToken, err := i.CreateAccessToken(userID)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.CreatePair CreateAccessToken")
	}
	return &Pair{Access: accessToken, Refresh: refreshToken}, nil
}

// Refresh exchanges a refresh token for a new access token. With rotation the
// old refresh token is blacklisted and a new one returned.
func (i *Issuer) Refresh(rawRefresh string) (*Pair, error) {
	claims, err := i.Verify(rawRefresh, TypeRefresh)
	if err != nil {
		return nil, err
	}
	if _, err := i.refreshManager.Check(claims.ID); err != nil {
		return nil, errors.Wrap(ErrTokenInvalid, err.Error())
	}

	accessToken, err := i.CreateAccessToken(claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.Refresh CreateAccessToken")
	}
	if !i.rotateRefresh {
		return &Pair{Access: accessToken}, nil
	}

	if err := i.refreshManager.Blacklist(claims.ID); err != nil {
		return nil, errors.Wrap(err, "Issuer.Refresh Blacklist")
	}
	refreshToken, err := i.CreateRefreshToken(claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "Issuer.Refresh CreateRefreshToken")
	}
	return &Pair{Access: accessToken, Refresh: refreshToken}, nil
}

// Revoke blacklists a refresh token.
func (i *Issuer) Revoke(rawRefresh string) error {
	claims, err := i.Verify(rawRefresh, TypeRefresh)
	if err != nil {
		return err
	}
	return i.refreshManager.Blacklist(claims.ID)
}

// Verify checks the signature, expiry and token_type of rawToken.
func (i *Issuer) Verify(rawToken, tokenType string) (*Claims, error) {
	mapClaims, err := i.signer.Parse(rawToken, tokenType, i.nowFunc)
	if err != nil {
		return nil, err
	}

	claims := &Claims{Raw: mapClaims}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.ID, _ = mapClaims["jti"].(string)
	claims.TokenType, _ = mapClaims["token_type"].(string)
	claims.UserID = claimString(mapClaims["user_id"])
	return claims, nil
}
