package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/respira/wellness-api/docs"
	"github.com/respira/wellness-api/internal/api/handler"
	"github.com/respira/wellness-api/internal/api/middleware"
	"github.com/respira/wellness-api/internal/api/session"
	"github.com/respira/wellness-api/internal/core/domain"
	"github.com/respira/wellness-api/internal/core/ports"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	Auth     ports.AuthService
	Sessions ports.SessionResolver
	Roles    ports.RoleResolver
	RoleSvc  ports.RoleService
	UserSvc  ports.UserService
	Health   map[string]handler.Check
}

// Options tune the transport.
type Options struct {
	Cookies       session.Cookies
	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestContext())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(metricsMiddleware(opts.Registry))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, opts.Cookies)
	roleHandler := handler.NewRoleHandler(deps.RoleSvc)
	userHandler := handler.NewUserHandler(deps.UserSvc)
	healthHandler := handler.NewHealthHandler(deps.Health)

	requireSession := middleware.Session(deps.Sessions, opts.Cookies)
	requireAdmin := middleware.RBAC(deps.Roles, domain.RoleAdmin)
	limit := middleware.AuthRateLimit(opts.AuthRateLimit, opts.AuthRateBurst)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, limit)
	auth.POST("/login", authHandler.Login, limit)
	auth.POST("/refresh", authHandler.Refresh, limit)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/mon-compte", authHandler.Me, requireSession)
	auth.PUT("/update-username", authHandler.UpdateUsername, requireSession)
	auth.GET("/admin", authHandler.Admin, requireSession, requireAdmin)

	// --- Admin routes ---
	roles := e.Group("/roles", requireSession, requireAdmin)
	roles.POST("", roleHandler.Create)
	roles.GET("", roleHandler.List)
	roles.DELETE("/:name", roleHandler.Delete)

	e.GET("/users", userHandler.List, requireSession, requireAdmin)

	// --- Health (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", metricsHandler(opts.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "respira",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
