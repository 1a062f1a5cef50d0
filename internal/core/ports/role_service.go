package ports

import (
	"context"

	"github.com/respira/wellness-api/internal/core/domain"
)

// RoleService manages roles from the admin endpoints and at bootstrap.
type RoleService interface {
	SeedDefaults(ctx context.Context) error
	Create(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Delete(ctx context.Context, name string) error
}

// UserService exposes read access to accounts for administrators.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
}
