package server

import (
	"fmt"
	"time"

	"github.com/jrsteele09/rideon-session/users"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem seeds the configured development user. It returns true
// when the user was created and false when it already existed.
func (s *Server) InitialiseSystem() (bool, error) {
	email := s.config.GetDevUserEmail()
	if email == "" {
		return false, nil
	}
	if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
		log.Info().Str("email", email).Msg("Bootstrap: dev user already exists")
		return false, nil
	}

	userType := users.UserType(s.config.GetDevUserType())
	if !userType.Valid() {
		return false, fmt.Errorf("invalid dev user type %q", userType)
	}

	password := s.config.GetDevUserPassword()
	if err := users.ValidatePasswordStrength(password); err != nil {
		return false, fmt.Errorf("dev user password: %w", err)
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash dev user password: %w", err)
	}

	user := &users.User{
		Email:           email,
		PasswordHash:    hash,
		UserType:        userType,
		IsEmailVerified: true,
		IsActive:        true,
		DateJoined:      time.Now(),
	}
	if err := s.users.Upsert(user); err != nil {
		return false, fmt.Errorf("failed to create dev user: %w", err)
	}

	log.Info().
		Str("base_url", s.config.GetBaseURL()).
		Str("email", email).
		Str("user_type", string(userType)).
		Str("id", string(user.ID)).
		Msg("Bootstrap: dev user created")
	return true, nil
}
