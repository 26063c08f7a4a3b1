package errors

import (
	"errors"
	"fmt"
)

// Session manager error taxonomy
var (
	// Token errors
	ErrNoToken        = errors.New("no authentication token found")
	ErrMalformedToken = errors.New("malformed token")

	// Server responses
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRefreshFailed      = errors.New("token refresh failed")
	ErrLoginFailed        = errors.New("login failed")
	ErrProfileUnavailable = errors.New("profile unavailable")

	// Network errors
	ErrTransport = errors.New("transport error")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Transport marks err as a network-level failure while keeping the original
// error reachable through errors.As and errors.Unwrap.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return &transportError{err: err}
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTransport, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{ErrTransport, e.err}
}
