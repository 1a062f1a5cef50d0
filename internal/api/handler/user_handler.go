package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
)

// UserHandler serves the admin user listing.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every user with its role expanded.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200   {array}   domain.User
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}
