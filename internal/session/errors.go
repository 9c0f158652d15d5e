package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when a token is missing or does not decode
	// into well-formed claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token decodes but its expiry is not
	// in the future.
	ErrExpiredToken = errors.New("token expired")

	// ErrAuthInProgress is returned when a login or registration is already
	// pending for the same client.
	ErrAuthInProgress = errors.New("authentication already in progress")
)

// AuthRejectedError reports a failed login or registration. Err is the
// underlying cause: a transport failure, a rejection from the auth service,
// or an unusable token.
type AuthRejectedError struct {
	Op  string
	Err error
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Op, e.Err)
}

func (e *AuthRejectedError) Unwrap() error { return e.Err }
