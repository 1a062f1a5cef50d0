package ports

import (
	"context"

	"github.com/respira/wellness-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Firstname string
	Lastname  string
	Email     string
	Password  string
	RoleName  string
}

// AuthService orchestrates the credential flows behind the /auth endpoints.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput, client domain.ClientInfo) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, login, password string, client domain.ClientInfo) (*domain.User, *domain.TokenPair, error)
	// Refresh mints a new access token from a refresh token.
	Refresh(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.User, string, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateUsername(ctx context.Context, userID, username string, client domain.ClientInfo) (*domain.User, error)
}

// SessionResolver turns the cookie pair of a request into a domain.Session.
// Rejections are *domain.SessionError values.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string, client domain.ClientInfo) (*domain.Session, error)
}

// RoleResolver resolves the name behind a UserRole, whichever form it has.
type RoleResolver interface {
	RoleName(ctx context.Context, role domain.UserRole) (string, error)
	Expand(ctx context.Context, user *domain.User) (*domain.User, error)
	ExpandOrRef(ctx context.Context, user *domain.User) (*domain.User, error)
}
