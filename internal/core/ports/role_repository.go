package ports

import (
	"context"

	"github.com/respira/wellness-api/internal/core/domain"
)

// RoleRepository persists roles. Lookups return domain.ErrRoleNotFound when
// nothing matches; a duplicate name surfaces as domain.ErrRoleExists.
type RoleRepository interface {
	Create(ctx context.Context, name string) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	DeleteByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Count(ctx context.Context) (int64, error)
}

// RoleCache caches role names by role id.
type RoleCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, roleID string) (name string, ok bool, err error)
	Set(ctx context.Context, roleID, name string) error
	Delete(ctx context.Context, roleID string) error
}
