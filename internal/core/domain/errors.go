package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be at least 3 characters")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrRoleExists         = errors.New("role already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access denied")
	ErrNoUser             = errors.New("access denied, no user")
)

// ErrUnauthenticated is matched by every SessionError.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionError is a terminal rejection of a request's session. Reason is the
// client-facing message.
type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string { return e.Reason }

func (e *SessionError) Is(target error) bool { return target == ErrUnauthenticated }

var (
	ErrAccessDenied        = &SessionError{Reason: "access denied"}
	ErrInvalidRefreshToken = &SessionError{Reason: "invalid refresh token"}
	ErrRefreshTokenMissing = &SessionError{Reason: "refresh token not found"}
	ErrSessionUserNotFound = &SessionError{Reason: "user not found"}
)
