package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/respira/wellness-api/internal/api/metrics"
	"github.com/respira/wellness-api/internal/api/session"
	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
)

// Session resolves the caller from the session cookies and attaches the user
// to the context. When the resolver renews the access token, the new cookie is
// set before the wrapped handler writes anything.
func Session(resolver ports.SessionResolver, cookies session.Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			refreshToken := session.CookieValue(c, session.RefreshTokenCookie)

			sess, err := resolver.Resolve(
				c.Request().Context(),
				session.CookieValue(c, session.AccessTokenCookie),
				refreshToken,
				session.Client(c),
			)
			if err != nil {
				var rejected *domain.SessionError
				if errors.As(err, &rejected) {
					metrics.SessionRejectionsTotal.WithLabelValues(rejected.Reason).Inc()
					if errors.Is(err, domain.ErrInvalidRefreshToken) {
						metrics.TokenRefreshesTotal.WithLabelValues("session", "rejected").Inc()
					}
					return echo.NewHTTPError(http.StatusUnauthorized, rejected.Reason)
				}
				return err
			}

			if sess.Refreshed() {
				c.SetCookie(cookies.Access(sess.AccessToken))
				metrics.TokenRefreshesTotal.WithLabelValues("session", "success").Inc()
			}

			session.SetUser(c, sess.User)
			return next(c)
		}
	}
}
