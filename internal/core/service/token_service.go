package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/respira/wellness-api/internal/core/domain"
)

// tokenClaims is the payload of both token kinds: the user id and the
// registered expiry.
type tokenClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 session tokens.
type TokenService struct {
	cfg domain.TokenConfig
	now func() time.Time
}

// NewTokenService returns a TokenService for cfg. Zero TTLs fall back to the
// domain defaults.
func NewTokenService(cfg domain.TokenConfig) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = domain.DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = domain.DefaultRefreshTTL
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *TokenService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// IssuePair mints an access and a refresh token for userID.
func (s *TokenService) IssuePair(userID string) (*domain.TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccessToken(token string) (string, error) {
	return s.Verify(token, s.cfg.AccessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	return s.Verify(token, s.cfg.RefreshSecret)
}

// Verify checks the signature and expiry of token against secret and returns
// the user id it binds. Every failure wraps domain.ErrInvalidToken.
func (s *TokenService) Verify(token string, secret []byte) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	return claims.UserID, nil
}

// IsExpired reports whether err came from an otherwise valid token whose
// lifetime has elapsed.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func (s *TokenService) issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: empty user id")
	}
	now := s.now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
