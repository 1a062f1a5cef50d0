package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
	"github.com/respira/wellness-api/pkg/logger"
)

type RoleService struct {
	roles ports.RoleRepository
	cache ports.RoleCache
	log   zerolog.Logger
}

// NewRoleService returns a RoleService. cache may be nil.
func NewRoleService(roles ports.RoleRepository, cache ports.RoleCache, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, cache: cache, log: log}
}

// SeedDefaults creates the default roles when no role exists yet.
func (s *RoleService) SeedDefaults(ctx context.Context) error {
	count, err := s.roles.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if count > 0 {
		logger.For(ctx, s.log).Info().Int64("count", count).Msg("roles already initialised")
		return nil
	}

	for _, name := range domain.DefaultRoles {
		if _, err := s.roles.Create(ctx, name); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	logger.For(ctx, s.log).Info().Strs("roles", domain.DefaultRoles).Msg("default roles created")
	return nil
}

func (s *RoleService) Create(ctx context.Context, name string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidRole
	}
	return s.roles.Create(ctx, name)
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

// Delete removes the role called name and evicts it from the cache.
func (s *RoleService) Delete(ctx context.Context, name string) error {
	role, err := s.roles.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, role.ID); err != nil {
			logger.For(ctx, s.log).Warn().Err(err).Str("role_id", role.ID).Msg("role cache eviction failed")
		}
	}
	logger.For(ctx, s.log).Info().Str("role", name).Msg("role deleted")
	return nil
}

type UserService struct {
	users    ports.UserRepository
	resolver ports.RoleResolver
}

func NewUserService(users ports.UserRepository, resolver ports.RoleResolver) *UserService {
	return &UserService{users: users, resolver: resolver}
}

// List returns every user with its role expanded. Users whose role no longer
// exists keep the bare reference.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		expanded, err := s.resolver.ExpandOrRef(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
