package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the embed backend. Every failure is terminal for the
// request that hit it; nothing retries.
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")

	// Token minting errors
	ErrConfiguration       = errors.New("missing workspace configuration")
	ErrUpstreamAuth        = errors.New("oidc token request failed")
	ErrUpstreamTokenInfo   = errors.New("token info request failed")
	ErrUpstreamScopedToken = errors.New("scoped token request failed")
	ErrUpstreamTimeout     = errors.New("upstream request timed out")
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
