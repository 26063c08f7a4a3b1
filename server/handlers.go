package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/rideon-session/token"
	"github.com/jrsteele09/rideon-session/users"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Email    string         `json:"email"`
	UserType users.UserType `json:"user_type"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Tokens  *token.Pair `json:"tokens,omitempty"`
	Data    *loginData  `json:"data,omitempty"`
	Status  string      `json:"status"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// IndexHandler issues the CSRF cookie, the way loading any page of the site does.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.SetCSRFCookie(w, r)
		writeJSON(w, http.StatusOK, map[string]string{
			"app": s.config.GetAppName(),
		})
	}
}

// LoginHandler exchanges email and password for a token pair (POST /auth/login/).
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeLoginFailed(w, ErrCredentialsRequired)
			return
		}
		if err := ValidateUserCredentials(req.Email, req.Password); err != nil {
			writeLoginFailed(w, err)
			return
		}

		user, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
		if err != nil || user == nil || !user.Authenticate(req.Password) {
			writeLoginFailed(w, ErrInvalidCredentials)
			return
		}
		if err := ValidateUserState(user); err != nil {
			writeLoginFailed(w, err)
			return
		}

		pair, err := s.issuer.CreatePair(string(user.ID))
		if err != nil {
			log.Err(err).Str("email", user.Email).Msg("Login: failed to issue tokens")
			writeJSON(w, http.StatusInternalServerError, loginResponse{Message: "Could not issue tokens", Status: "failed"})
			return
		}

		user.LastLogin = time.Now()
		if err := s.users.Upsert(user); err != nil {
			log.Err(err).Str("email", user.Email).Msg("Login: failed to record last login")
		}

		writeJSON(w, http.StatusOK, loginResponse{
			Message: "Logged in successfully",
			Tokens:  pair,
			Data:    &loginData{Email: user.Email, UserType: user.UserType},
			Status:  "success",
		})
	}
}

// TokenRefreshHandler exchanges a refresh token for a new access token and,
// with rotation, a new refresh token (POST /api/token/refresh/).
func (s *Server) TokenRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
			return
		}

		pair, err := s.issuer.Refresh(req.Refresh)
		if err != nil {
			log.Debug().Err(err).Msg("TokenRefresh: rejected refresh token")
			writeTokenNotValid(w, "Token is invalid or expired")
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler blacklists the posted refresh token. It always answers 200,
// including when no token was sent or the token was already unusable.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Refresh != "" {
			if err := s.issuer.Revoke(req.Refresh); err != nil {
				log.Debug().Err(err).Msg("Logout: refresh token not blacklisted")
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	}
}

// ProfileHandler returns the authenticated user's profile (GET /profile/).
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r.Context())
		if !ok {
			writeTokenNotValid(w, "Given token not valid for any token type")
			return
		}

		user, err := s.users.GetByID(users.ID(claims.UserID))
		if err != nil || user == nil || !user.IsActive {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "User not found",
				"code":   "user_not_found",
			})
			return
		}
		writeJSON(w, http.StatusOK, user.Profile())
	}
}

func writeLoginFailed(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, loginResponse{Message: err.Error(), Status: "failed"})
}
