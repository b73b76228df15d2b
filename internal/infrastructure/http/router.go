// Package http serves the development REST backend.
package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/devbackend"
	"github.com/99minutos/backoffice/internal/infrastructure/http/handlers"
	session "github.com/99minutos/backoffice/internal/infrastructure/http/middleware"
)

const accountsResource = "userAdmins"

// Dependencies of the development backend routes.
type Dependencies struct {
	Service *devbackend.Service
	Store   *devbackend.ResourceStore
	// AuthPath prefixes login, logout and verifySession, e.g. /userAdmins.
	AuthPath string
	Checks   map[string]handlers.Check
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// --- Global middleware ---
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			deps.Log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("request")
			return nil
		},
	}))

	// --- Session routes ---
	sessionHandler := handlers.NewSessionHandler(deps.Service, deps.Log)
	authPath := "/" + strings.Trim(deps.AuthPath, "/")
	if authPath == "/" {
		authPath = ""
	}
	e.POST(authPath+"/login", sessionHandler.Login)
	e.POST(authPath+"/logout", sessionHandler.Logout)
	e.GET(authPath+"/verifySession", sessionHandler.VerifySession)

	// --- Merchant sign-up (no session required) ---
	signUpHandler := handlers.NewSignUpHandler(deps.Service, devbackend.NewMerchants(deps.Store), deps.Store, deps.Log)
	e.POST("/merchants/createMerchantWithEmailOnly", signUpHandler.CreateMerchant)
	e.DELETE("/merchants/:id", signUpHandler.DeletePendingMerchant)
	e.POST("/"+accountsResource, signUpHandler.CreateAccount)

	// --- Resources, same roles as the console ---
	resourceHandler := handlers.NewResourceHandler(deps.Store)
	requireSession := session.Session(deps.Service)
	for _, res := range domain.Resources() {
		g := e.Group("/"+res.Name, requireSession, session.RequireRoles(res.Roles))
		if res.Name == accountsResource {
			// Accounts are created through the sign-up route above.
			res.Ops &^= domain.OpCreate
		}
		registerResource(g, res, resourceHandler)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}

func registerResource(g *echo.Group, res domain.Resource, h *handlers.ResourceHandler) {
	if res.Singleton {
		g.GET("", h.Get(res))
		g.PUT("", h.Update(res))
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
