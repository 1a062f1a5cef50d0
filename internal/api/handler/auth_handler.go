package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/respira/wellness-api/internal/api/metrics"
	"github.com/respira/wellness-api/internal/api/session"
	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     session.Cookies
}

func NewAuthHandler(authService ports.AuthService, cookies session.Cookies) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type registerRequest struct {
	Username  string `json:"username" validate:"required"`
	Firstname string `json:"firstname" validate:"max=100"`
	Lastname  string `json:"lastname" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	RoleName  string `json:"roleName" validate:"required"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type resultResponse struct {
	Result *domain.User `json:"result"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type updateUsernameResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// Register creates a new account and opens a session for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  resultResponse
// @Failure      400   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, pair, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Firstname: sanitizeName(req.Firstname),
		Lastname:  sanitizeName(req.Lastname),
		Email:     req.Email,
		Password:  req.Password,
		RoleName:  req.RoleName,
	}, session.Client(c))
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	c.SetCookie(h.cookies.Access(pair.AccessToken))
	c.SetCookie(h.cookies.Refresh(pair.RefreshToken))
	return c.JSON(http.StatusCreated, resultResponse{Result: user})
}

// Login authenticates by email or username and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Email or username, and password"
// @Success      200   {object}  resultResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, pair, err := h.authService.Login(c.Request().Context(), req.Login, req.Password, session.Client(c))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(h.cookies.Access(pair.AccessToken))
	c.SetCookie(h.cookies.Refresh(pair.RefreshToken))
	return c.JSON(http.StatusOK, resultResponse{Result: user})
}

// Refresh mints a new access token from the refreshToken cookie.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200   {object}  resultResponse
// @Failure      401   {object}  messageResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	user, access, err := h.authService.Refresh(
		c.Request().Context(),
		session.CookieValue(c, session.RefreshTokenCookie),
		session.Client(c),
	)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("endpoint", "rejected").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("endpoint", "success").Inc()
	c.SetCookie(h.cookies.Access(access))
	return c.JSON(http.StatusOK, resultResponse{Result: user})
}

// Logout clears both session cookies. It never fails.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	for _, cookie := range h.cookies.Clear() {
		c.SetCookie(cookie)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

// Me returns the signed-in user with the role expanded.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200   {object}  domain.User
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/mon-compte [get]
func (h *AuthHandler) Me(c echo.Context) error {
	current, ok := session.User(c)
	if !ok {
		return domain.ErrAccessDenied
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), current.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUsername renames the signed-in user.
//
// @Summary      Change username
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateUsernameRequest  true  "New username"
// @Success      200   {object}  updateUsernameResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /auth/update-username [put]
func (h *AuthHandler) UpdateUsername(c echo.Context) error {
	current, ok := session.User(c)
	if !ok {
		return domain.ErrAccessDenied
	}

	var req updateUsernameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.UpdateUsername(c.Request().Context(), current.ID, req.Username, session.Client(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateUsernameResponse{Message: "username updated", User: user})
}

// Admin is the admin-only check endpoint.
//
// @Summary      Admin content
// @Tags         auth
// @Produce      json
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Router       /auth/admin [get]
func (h *AuthHandler) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "admin content"})
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return "exists"
	case errors.Is(err, domain.ErrInvalidRole):
		return "bad_role"
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "bad_password"
	default:
		return "error"
	}
}
