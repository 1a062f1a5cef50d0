// Command api serves the Respira account and session API.
//
// @title        Respira API
// @version      1.0
// @description  Accounts, cookie sessions and roles for the Respira wellness app.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/api"
	"github.com/respira/wellness-api/internal/api/handler"
	"github.com/respira/wellness-api/internal/api/session"
	"github.com/respira/wellness-api/internal/core/service"
	"github.com/respira/wellness-api/internal/infrastructure/db/mongo"
	"github.com/respira/wellness-api/internal/infrastructure/db/redis"
	"github.com/respira/wellness-api/internal/infrastructure/queue"
	"github.com/respira/wellness-api/internal/pkg/config"
	"github.com/respira/wellness-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "respira-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	rdb, err := redis.Connect(ctx, redis.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	users := mongo.NewUserRepository(db)
	roles := mongo.NewRoleRepository(db)
	auditRepo := mongo.NewAuditRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, roles, auditRepo); err != nil {
		return err
	}
	roleCache := redis.NewRoleCache(rdb, cfg.Redis.RoleCacheTTL)

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	// --- Services ---
	tokens := service.NewTokenService(cfg.Auth.TokenConfig())
	resolver := service.NewRoleResolver(roles, roleCache, logger.Component("roles"))
	roleService := service.NewRoleService(roles, roleCache, logger.Component("roles"))
	if err := roleService.SeedDefaults(ctx); err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Auth: service.NewAuthService(users, roles, tokens, resolver, dispatcher,
			cfg.Auth.PasswordCost(), logger.Component("auth")),
		Sessions: service.NewSessionService(tokens, users, dispatcher, logger.Component("session")),
		Roles:    resolver,
		RoleSvc:  roleService,
		UserSvc:  service.NewUserService(users, resolver),
		Health: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return pingRedis(ctx, rdb) },
		},
	}, api.Options{
		Cookies: session.Cookies{
			Secure:     cfg.Production(),
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		},
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.Auth.RateLimit,
		AuthRateBurst: cfg.Auth.RateBurst,
		Log:           logger.Component("http"),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("api server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("api server stopped")
	return nil
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
