package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// UserType distinguishes riders from drivers.
type UserType string

const (
	UserTypeRider  UserType = "RIDER"
	UserTypeDriver UserType = "DRIVER"
)

func (t UserType) Valid() bool {
	return t == UserTypeRider || t == UserTypeDriver
}

// ID is a user identifier. It decodes from a JSON string or number since the
// RideOn backend uses integer primary keys.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid user id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

type User struct {
	ID              ID        `json:"id,omitempty"`
	Email           string    `json:"email,omitempty"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	UserType        UserType  `json:"user_type,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	IsActive        bool      `json:"is_active"`
	IsStaff         bool      `json:"is_staff"`
	DateJoined      time.Time `json:"date_joined,omitempty"`
	LastLogin       time.Time `json:"last_login,omitempty"`
}

// Profile is the body of GET /profile/.
type Profile struct {
	ID              ID       `json:"id"`
	Email           string   `json:"email"`
	UserType        UserType `json:"user_type"`
	PhoneNumber     string   `json:"phone_number,omitempty"`
	IsEmailVerified bool     `json:"is_email_verified"`
	IsPhoneVerified bool     `json:"is_phone_verified"`
	IsActive        bool     `json:"is_active"`
	IsStaff         bool     `json:"is_staff"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		UserType:        u.UserType,
		PhoneNumber:     u.PhoneNumber,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		IsActive:        u.IsActive,
		IsStaff:         u.IsStaff,
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate checks password against the stored hash.
func (u *User) Authenticate(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) IsDriver() bool {
	return u.UserType == UserTypeDriver
}
