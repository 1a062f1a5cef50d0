package domain

import "time"

// AuthEventKind names a recorded authentication event.
type AuthEventKind string

const (
	EventRegistered      AuthEventKind = "registered"
	EventLoggedIn        AuthEventKind = "logged_in"
	EventLoginFailed     AuthEventKind = "login_failed"
	EventTokenRefreshed  AuthEventKind = "token_refreshed"
	EventSessionRenewed  AuthEventKind = "session_renewed"
	EventUsernameChanged AuthEventKind = "username_changed"
)

// AuthEvent is an entry of the authentication audit trail.
type AuthEvent struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Kind      AuthEventKind `json:"kind"`
	IP        string        `json:"ip,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	At        time.Time     `json:"at"`
}

// ClientInfo describes the caller of an auth operation for the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}
