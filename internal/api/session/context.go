package session

import (
	"github.com/labstack/echo/v4"

	"github.com/respira/wellness-api/internal/core/domain"
)

const userKey = "session.user"

// SetUser attaches the authenticated user to the request.
func SetUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}

// User returns the user attached by the session middleware.
func User(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userKey).(*domain.User)
	return user, ok && user != nil
}

// CookieValue returns the value of the named request cookie, or "".
func CookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Client describes the caller for the audit trail.
func Client(c echo.Context) domain.ClientInfo {
	return domain.ClientInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
