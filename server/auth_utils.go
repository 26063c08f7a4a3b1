package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/rideon-session/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

const contentTypeJSON = "application/json"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) SetCSRFCookie(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	value := generateRandomString(32)
	http.SetCookie(w, &http.Cookie{
		Name:     s.csrfCookieName,
		Value:    value,
		Path:     "/",
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
	return value
}

// RequireAuth validates the Bearer access token and stores its claims in the
// request context. Failures answer 401 in the shape simplejwt uses.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"detail": "Authentication credentials were not provided.",
				})
				return
			}
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				writeTokenNotValid(w, "Authorization header must contain two space-delimited values")
				return
			}

			claims, err := s.issuer.Verify(raw, token.TypeAccess)
			if err != nil {
				writeTokenNotValid(w, "Given token not valid for any token type")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func claimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeTokenNotValid writes a simplejwt style token error
func writeTokenNotValid(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"detail": detail,
		"code":   "token_not_valid",
	})
}
