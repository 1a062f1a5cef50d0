package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/respira/wellness-api/internal/core/domain"
)

const (
	EnvProduction = "production"

	// minBcryptCost is the lowest password hashing cost accepted in any environment.
	minBcryptCost = 12
)

type Config struct {
	Port        string   `env:"PORT,         default=5001"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
}

type AuthConfig struct {
	AccessSecret  string        `env:"JWT_SECRET,         required"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL,  default=168h"`
	BcryptCost    int           `env:"BCRYPT_COST,        default=12"`
	RateLimit     float64       `env:"AUTH_RATE_LIMIT,    default=5"`
	RateBurst     int           `env:"AUTH_RATE_BURST,    default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=respira"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,       default=0"`
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL, default=10m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads and validates configuration from lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would weaken the session model.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.AccessSecret) == "" || strings.TrimSpace(c.Auth.RefreshSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set"))
	}
	if bytes.Equal([]byte(c.Auth.AccessSecret), []byte(c.Auth.RefreshSecret)) {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Auth.AccessTTL >= c.Auth.RefreshTTL {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL"))
	}
	if c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at most %d", bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// TokenConfig builds the signing configuration for the token service.
func (a AuthConfig) TokenConfig() domain.TokenConfig {
	return domain.TokenConfig{
		AccessSecret:  []byte(a.AccessSecret),
		RefreshSecret: []byte(a.RefreshSecret),
		AccessTTL:     a.AccessTTL,
		RefreshTTL:    a.RefreshTTL,
	}
}

// PasswordCost returns the bcrypt cost, never below minBcryptCost.
func (a AuthConfig) PasswordCost() int {
	if a.BcryptCost < minBcryptCost {
		return minBcryptCost
	}
	return a.BcryptCost
}
