package cli

import (
	"fmt"
	"strings"
)

// AuthRequiredError indicates authentication is needed but the required
// configuration is missing. Implements error with actionable guidance.
type AuthRequiredError struct {
	// MissingKeys lists the configuration keys that must be set, in their
	// environment-variable spelling.
	MissingKeys []string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	if len(e.MissingKeys) == 0 {
		return `Authentication required

To authenticate, run:
  apsconnect auth login`
	}
	return fmt.Sprintf(`Authentication is not configured: missing %s

Set the missing environment variables (or add them to config.yaml),
then run:
  apsconnect auth login`, strings.Join(e.MissingKeys, ", "))
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthExpiredError indicates the cached token has expired and could not be
// refreshed silently.
type AuthExpiredError struct{}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthExpiredError) Error() string {
	return `Authentication expired

To re-authenticate, run:
  apsconnect auth login`
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthExpiredError) Is(target error) bool {
	_, ok := target.(*AuthExpiredError)
	return ok
}

// AuthFailedError indicates the OAuth flow itself failed.
type AuthFailedError struct {
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed: %v

To retry authentication, run:
  apsconnect auth login`, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}
