package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
	"github.com/respira/wellness-api/pkg/logger"
)

// DefaultBcryptCost is the minimum cost used for password hashes in production.
const DefaultBcryptCost = 12

// AuthService implements registration, login, explicit refresh and the
// account operations of the signed-in user.
type AuthService struct {
	users      ports.UserRepository
	roles      ports.RoleRepository
	tokens     *TokenService
	resolver   ports.RoleResolver
	audit      ports.AuditRecorder
	bcryptCost int
	log        zerolog.Logger
}

// NewAuthService wires an AuthService. A bcryptCost outside bcrypt's range
// falls back to DefaultBcryptCost; audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	tokens *TokenService,
	resolver ports.RoleResolver,
	audit ports.AuditRecorder,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &AuthService{
		users:      users,
		roles:      roles,
		tokens:     tokens,
		resolver:   resolver,
		audit:      audit,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput, client domain.ClientInfo) (*domain.User, *domain.TokenPair, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validUsername(in.Username); err != nil {
		return nil, nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("register: check email: %w", err)
	}

	role, err := s.roles.FindByName(ctx, in.RoleName)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, nil, domain.ErrInvalidRole
		}
		return nil, nil, fmt.Errorf("register: find role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleRef(role.ID),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, nil, domain.ErrUserExists
		}
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	pair, err := s.tokens.IssuePair(created.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	s.record(created.ID, domain.EventRegistered, client)
	logger.For(ctx, s.log).Info().Str("user_id", created.ID).Str("role", role.Name).Msg("user registered")

	return created.WithRole(*role), pair, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string, client domain.ClientInfo) (*domain.User, *domain.TokenPair, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(user.ID, domain.EventLoginFailed, client)
		return nil, nil, domain.ErrInvalidCredentials
	}

	expanded, err := s.resolver.ExpandOrRef(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.record(user.ID, domain.EventLoggedIn, client)
	return expanded, pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.User, string, error) {
	if refreshToken == "" {
		return nil, "", domain.ErrRefreshTokenMissing
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, "", domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrSessionUserNotFound
		}
		return nil, "", fmt.Errorf("refresh: %w", err)
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("refresh: %w", err)
	}

	expanded, err := s.resolver.ExpandOrRef(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("refresh: %w", err)
	}

	s.record(user.ID, domain.EventTokenRefreshed, client)
	return expanded, access, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.ExpandOrRef(ctx, user)
}

func (s *AuthService) UpdateUsername(ctx context.Context, userID, username string, client domain.ClientInfo) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validUsername(username); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, username, userID)
	if err != nil {
		return nil, fmt.Errorf("update username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	updated, err := s.users.UpdateUsername(ctx, userID, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	s.record(userID, domain.EventUsernameChanged, client)
	return s.resolver.ExpandOrRef(ctx, updated)
}

func (s *AuthService) record(userID string, kind domain.AuthEventKind, client domain.ClientInfo) {
	s.audit.Record(domain.AuthEvent{
		UserID:    userID,
		Kind:      kind,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		At:        time.Now().UTC(),
	})
}

func validUsername(username string) error {
	if utf8.RuneCountInString(username) < domain.MinUsernameLength {
		return domain.ErrInvalidUsername
	}
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(domain.AuthEvent) {}
