package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
	"github.com/respira/wellness-api/pkg/logger"
)

// RoleResolver is the single place where a domain.UserRole is turned into a
// role name. Bare references go through the cache, then the role store.
type RoleResolver struct {
	roles ports.RoleRepository
	cache ports.RoleCache
	log   zerolog.Logger
}

// NewRoleResolver returns a RoleResolver. cache may be nil.
func NewRoleResolver(roles ports.RoleRepository, cache ports.RoleCache, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{roles: roles, cache: cache, log: log}
}

// RoleName returns the name of role. An unknown role yields
// domain.ErrRoleNotFound.
func (r *RoleResolver) RoleName(ctx context.Context, role domain.UserRole) (string, error) {
	switch v := role.(type) {
	case domain.Role:
		if v.Name != "" {
			return v.Name, nil
		}
		return r.lookup(ctx, v.ID)
	case *domain.Role:
		if v == nil {
			return "", domain.ErrRoleNotFound
		}
		return r.RoleName(ctx, *v)
	case domain.RoleRef:
		return r.lookup(ctx, string(v))
	default:
		return "", domain.ErrRoleNotFound
	}
}

// Expand returns a copy of user whose role is a full domain.Role.
func (r *RoleResolver) Expand(ctx context.Context, user *domain.User) (*domain.User, error) {
	if expanded, ok := user.Role.(domain.Role); ok && expanded.Name != "" {
		return user, nil
	}
	name, err := r.RoleName(ctx, user.Role)
	if err != nil {
		return nil, err
	}
	return user.WithRole(domain.Role{ID: user.RoleID(), Name: name}), nil
}

// ExpandOrRef is Expand, except a user whose role no longer exists is
// returned unchanged with its bare reference.
func (r *RoleResolver) ExpandOrRef(ctx context.Context, user *domain.User) (*domain.User, error) {
	expanded, err := r.Expand(ctx, user)
	if errors.Is(err, domain.ErrRoleNotFound) {
		logger.For(ctx, r.log).Warn().Str("user_id", user.ID).Str("role_id", user.RoleID()).Msg("role of user no longer exists")
		return user, nil
	}
	return expanded, err
}

func (r *RoleResolver) lookup(ctx context.Context, roleID string) (string, error) {
	if roleID == "" {
		return "", domain.ErrRoleNotFound
	}

	if r.cache != nil {
		name, ok, err := r.cache.Get(ctx, roleID)
		switch {
		case err != nil:
			logger.For(ctx, r.log).Warn().Err(err).Str("role_id", roleID).Msg("role cache read failed, falling back to store")
		case ok:
			return name, nil
		}
	}

	role, err := r.roles.FindByID(ctx, roleID)
	if err != nil {
		return "", fmt.Errorf("resolve role %s: %w", roleID, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, roleID, role.Name); err != nil {
			logger.For(ctx, r.log).Warn().Err(err).Str("role_id", roleID).Msg("role cache write failed")
		}
	}
	return role.Name, nil
}
