package domain

import "time"

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenConfig holds the signing material and lifetimes for session tokens.
// Access and refresh tokens are signed with distinct secrets so one kind can
// never be accepted as the other.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Session is the outcome of a successful session resolution. AccessToken is
// set only when a new access token was minted from the refresh token and must
// be sent back to the client.
type Session struct {
	User        *User
	AccessToken string
}

// Refreshed reports whether resolution minted a new access token.
func (s *Session) Refreshed() bool { return s != nil && s.AccessToken != "" }

// TokenPair is the pair of credentials issued on register and login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
