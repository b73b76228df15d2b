// Package api exposes the console screens over HTTP.
package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/backoffice/internal/api/docs"
	"github.com/99minutos/backoffice/internal/api/handler"
	"github.com/99minutos/backoffice/internal/api/middleware"
	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/infrastructure/http/handlers"
)

// Dependencies are the collaborators the console routes need. Auth is the
// single AuthService of the process.
type Dependencies struct {
	Auth      ports.AuthService
	Prefs     handler.RememberStore
	Resources ports.ResourceClient
	SignUp    ports.SignUpService
	// Checks feed GET /health/ready.
	Checks map[string]handlers.Check
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// HTTP metrics go to a per-router registry so several routers can coexist
	// in one process; /metrics gathers it together with the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "backoffice",
		Subsystem:  "http",
		Registerer: reg,
		Skipper:    skipProbes,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Prefs, deps.Log)
	resourceHandler := handler.NewResourceHandler(deps.Resources, deps.Log)
	signUpHandler := handler.NewSignUpHandler(deps.SignUp, deps.Auth, deps.Log)
	signedIn := middleware.Authenticated(deps.Auth)

	// --- Session routes ---
	e.GET("/", authHandler.SignIn)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/session", authHandler.Session)
	e.GET(handler.SignUpPath, signUpHandler.Screen)
	e.POST(handler.SignUpPath, signUpHandler.SignUp)

	// --- Screens open to any signed-in identity ---
	e.GET(handler.DashboardPath, authHandler.Dashboard, signedIn)
	e.GET("/view-profile", authHandler.Profile, signedIn)
	e.GET(middleware.AccessDeniedPath, authHandler.AccessDenied, signedIn)

	// --- Role-gated resource screens ---
	for _, res := range domain.Resources() {
		registerResource(e.Group("/api/"+res.Name, middleware.GuardSet(deps.Auth, res.Roles)), res, resourceHandler)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerResource(g *echo.Group, res domain.Resource, h *handler.ResourceHandler) {
	if res.Singleton {
		if res.Allows(domain.OpGet) {
			g.GET("", h.Get(res))
		}
		if res.Allows(domain.OpUpdate) {
			g.PUT("", h.Update(res))
		}
		return
	}
	if res.Allows(domain.OpList) {
		g.GET("", h.List(res))
	}
	if res.Allows(domain.OpGet) {
		g.GET("/:id", h.Get(res))
	}
	if res.Allows(domain.OpCreate) {
		g.POST("", h.Create(res))
	}
	if res.Allows(domain.OpUpdate) {
		g.PUT("/:id", h.Update(res))
	}
	if res.Allows(domain.OpDelete) {
		g.DELETE("/:id", h.Delete(res))
	}
}

func skipProbes(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

// RequestLogger writes one zerolog entry per request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper:      skipProbes,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
