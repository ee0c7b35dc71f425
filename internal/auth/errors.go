// file: internal/auth/errors.go

package auth

import (
	"errors"
	"fmt"
)

// ErrNoToken is wrapped when the provider answered but the body held no
// usable token in any of the accepted shapes.
var ErrNoToken = errors.New("response contained no token")

// AuthError reports a failed login or refresh. Op is "login" or "refresh".
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	switch e.Op {
	case opLogin:
		return fmt.Sprintf("could not obtain token from auth endpoint: %v", e.Err)
	case opRefresh:
		return fmt.Sprintf("could not refresh token: %v", e.Err)
	}
	return fmt.Sprintf("auth %s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StatusError is wrapped by AuthError when the auth endpoint answered with
// a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}
