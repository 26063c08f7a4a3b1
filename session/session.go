package session

import (
	"context"
	"strings"
)

// Field names a persisted session value. The names match the keys the RideOn
// web front end keeps in browser storage.
type Field string

const (
	FieldAccessToken  Field = "access_token"
	FieldRefreshToken Field = "refresh_token"
	FieldUserEmail    Field = "user_email"
	FieldUserType     Field = "user_type"
	FieldUserID       Field = "user_id"
)

// Fields lists every field removed by Repo.Clear.
var Fields = []Field{FieldAccessToken, FieldRefreshToken, FieldUserEmail, FieldUserType, FieldUserID}

type UserType string

const (
	UserTypeRider  UserType = "RIDER"
	UserTypeDriver UserType = "DRIVER"
)

// Session is the client-held authentication state.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	UserEmail    string
	UserType     UserType
}

// Username is the local part of the stored email, or the whole value when it
// has no "@".
func (s Session) Username() string {
	name, _, _ := strings.Cut(s.UserEmail, "@")
	return name
}

func (s Session) IsDriver() bool {
	return s.UserType == UserTypeDriver
}

func (s Session) get(f Field) string {
	switch f {
	case FieldAccessToken:
		return s.AccessToken
	case FieldRefreshToken:
		return s.RefreshToken
	case FieldUserEmail:
		return s.UserEmail
	case FieldUserType:
		return string(s.UserType)
	case FieldUserID:
		return s.UserID
	}
	return ""
}

func (s *Session) set(f Field, v string) {
	switch f {
	case FieldAccessToken:
		s.AccessToken = v
	case FieldRefreshToken:
		s.RefreshToken = v
	case FieldUserEmail:
		s.UserEmail = v
	case FieldUserType:
		s.UserType = UserType(v)
	case FieldUserID:
		s.UserID = v
	}
}

// Load reads every field from repo. Missing fields are left empty.
func Load(ctx context.Context, repo Repo) (Session, error) {
	var s Session
	for _, f := range Fields {
		v, ok, err := repo.Get(ctx, f)
		if err != nil {
			return Session{}, err
		}
		if ok {
			s.set(f, v)
		}
	}
	return s, nil
}

// Save writes the non-empty fields of s to repo. Empty fields are left as
// they are in the store.
func Save(ctx context.Context, repo Repo, s Session) error {
	for _, f := range Fields {
		v := s.get(f)
		if v == "" {
			continue
		}
		if err := repo.Set(ctx, f, v); err != nil {
			return err
		}
	}
	return nil
}
