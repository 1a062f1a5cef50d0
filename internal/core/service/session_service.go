package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
	"github.com/respira/wellness-api/pkg/logger"
)

// SessionService resolves the identity behind a request's cookie pair. It
// holds no state between calls: validity is decided by signature and expiry.
//
//	access valid   -> load user              -> Session{User}
//	access bad/nil -> refresh valid -> user  -> Session{User, AccessToken}
//	               -> refresh missing        -> ErrAccessDenied
//	               -> refresh bad            -> ErrInvalidRefreshToken
//	user gone (either path)                  -> ErrSessionUserNotFound
type SessionService struct {
	tokens *TokenService
	users  ports.UserRepository
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewSessionService(tokens *TokenService, users ports.UserRepository, audit ports.AuditRecorder, log zerolog.Logger) *SessionService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &SessionService{tokens: tokens, users: users, audit: audit, log: log}
}

// Resolve returns the session for the given cookies. Rejections are
// *domain.SessionError; any other error is an infrastructure failure.
func (s *SessionService) Resolve(ctx context.Context, accessToken, refreshToken string, client domain.ClientInfo) (*domain.Session, error) {
	if accessToken != "" {
		userID, err := s.tokens.VerifyAccessToken(accessToken)
		if err == nil {
			user, err := s.loadUser(ctx, userID)
			if err != nil {
				return nil, err
			}
			return &domain.Session{User: user}, nil
		}
		logger.For(ctx, s.log).Debug().Err(err).Bool("expired", IsExpired(err)).Msg("access token rejected, trying refresh token")
	}

	return s.renew(ctx, refreshToken, client)
}

func (s *SessionService) renew(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrAccessDenied
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		logger.For(ctx, s.log).Debug().Err(err).Msg("refresh token rejected")
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}

	s.audit.Record(domain.AuthEvent{
		UserID:    user.ID,
		Kind:      domain.EventSessionRenewed,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		At:        time.Now().UTC(),
	})
	logger.For(ctx, s.log).Debug().Str("user_id", user.ID).Msg("session renewed from refresh token")

	return &domain.Session{User: user, AccessToken: access}, nil
}

func (s *SessionService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionUserNotFound
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return user, nil
}
