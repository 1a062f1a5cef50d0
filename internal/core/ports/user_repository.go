package ports

import (
	"context"

	"github.com/respira/wellness-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups return domain.ErrUserNotFound
// when nothing matches; unique index violations surface as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns the user with its role as a domain.RoleRef.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByLogin matches login against email or username and returns the
	// user with its role expanded.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	// UsernameTaken reports whether another user than exceptID owns username.
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	UpdateUsername(ctx context.Context, id, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
