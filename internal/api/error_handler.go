package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/core/domain"
)

// errorResponse is the error envelope of every API response.
type errorResponse struct {
	Message string `json:"message"`
}

// knownErrors maps domain sentinels to status codes. The sentinel's own text
// is rendered so wrapped context never reaches the client.
var knownErrors = []struct {
	err  error
	code int
}{
	{domain.ErrInvalidCredentials, http.StatusBadRequest},
	{domain.ErrUserExists, http.StatusBadRequest},
	{domain.ErrUsernameTaken, http.StatusBadRequest},
	{domain.ErrInvalidUsername, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrRoleExists, http.StatusBadRequest},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrRoleNotFound, http.StatusNotFound},
	{domain.ErrNoUser, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},
}

// NewHTTPErrorHandler maps domain errors to status codes and renders
// {"message": "..."}. Unexpected errors are logged and never shown to the
// client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Int("status", he.Code).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var rejected *domain.SessionError
	if errors.As(err, &rejected) {
		return http.StatusUnauthorized, rejected.Reason
	}

	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known.code, known.err.Error()
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
