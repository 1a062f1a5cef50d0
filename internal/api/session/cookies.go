// Package session holds the HTTP side of the cookie session: cookie names and
// attributes, and the request-scoped identity set by the session middleware.
package session

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Cookies builds the session cookies. All of them are HttpOnly and
// SameSite=Strict; Secure is set in production.
type Cookies struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (f Cookies) Access(token string) *http.Cookie {
	return f.build(AccessTokenCookie, token, f.AccessTTL)
}

func (f Cookies) Refresh(token string) *http.Cookie {
	return f.build(RefreshTokenCookie, token, f.RefreshTTL)
}

// Clear returns expired, empty versions of both session cookies.
func (f Cookies) Clear() []*http.Cookie {
	return []*http.Cookie{
		f.expired(AccessTokenCookie),
		f.expired(RefreshTokenCookie),
	}
}

func (f Cookies) build(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// expired renders as "Max-Age=0": net/http encodes a negative MaxAge that way.
func (f Cookies) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
