package server

import (
	"errors"
	"strings"

	"github.com/jrsteele09/rideon-session/users"
)

var (
	ErrCredentialsRequired = errors.New("Email and password are required")
	ErrInvalidEmail        = errors.New("Enter a valid email address")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrUserUnverified      = errors.New("Email is not verified")
	ErrUserInactive        = errors.New("Account is not active, contact the admin")
)

// ValidateUserCredentials checks the shape of a login request.
func ValidateUserCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrCredentialsRequired
	}
	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateUserState checks that user may log in. Verification is checked
// before activity, matching the order the backend reports them in.
func ValidateUserState(user *users.User) error {
	if user == nil {
		return ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return ErrUserUnverified
	}
	if !user.IsActive {
		return ErrUserInactive
	}
	return nil
}
