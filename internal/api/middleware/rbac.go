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

// RBAC enforces role-based access control. It must run after Session: the
// role of the attached user is resolved through resolver and checked against
// allowedRoles.
func RBAC(resolver ports.RoleResolver, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := session.User(c)
			if !ok {
				metrics.AuthorizationDeniedTotal.Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrNoUser.Error())
			}

			name, err := resolver.RoleName(c.Request().Context(), user.Role)
			if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
				return err
			}
			if _, ok := allowed[name]; !ok || name == "" {
				metrics.AuthorizationDeniedTotal.Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
