package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Session errors
var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionInvalid = errors.New("session rejected by backend")
)

// Authentication failure classes. AuthError wraps one of these so
// handlers can switch with errors.Is while still carrying the
// user-facing message.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLoginForbidden      = errors.New("account not permitted to sign in")
	ErrServiceUnavailable  = errors.New("authentication service unavailable")
	ErrValidationFailed    = errors.New("validation failed")
	ErrConnectivityFailure = errors.New("cannot reach backend")
)

// AuthError is an authentication failure classified into a user-facing
// message. Status is the HTTP status the gateway should answer with.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError builds a classified authentication failure.
func NewAuthError(status int, message string, cause error) *AuthError {
	return &AuthError{Status: status, Message: message, Err: cause}
}
