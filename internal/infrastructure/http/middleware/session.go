// Package middleware holds the session checks of the development backend.
package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/devbackend"
)

const (
	// CookieName is the session cookie set by login.
	CookieName = "token"
	// ClaimsKey is the echo context key of the verified *devbackend.Claims.
	ClaimsKey = "claims"
)

// ErrorBody is the error envelope of the development backend. IsExpired tells
// the console its session is gone.
type ErrorBody struct {
	Message   string `json:"message"`
	IsExpired bool   `json:"isExpired,omitempty"`
}

// Session validates the session cookie and injects its claims into context.
func Session(svc *devbackend.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, ErrorBody{Message: "missing session"})
			}

			v, err := svc.Verify(cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorBody{
					Message:   "Session expired, please sign in again",
					IsExpired: errors.Is(err, devbackend.ErrSessionExpired),
				})
			}

			c.Set(ClaimsKey, v.Claims)
			return next(c)
		}
	}
}

// RequireRoles rejects sessions whose role is not in allowed. It must run
// after Session.
func RequireRoles(allowed domain.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(ClaimsKey).(*devbackend.Claims)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, ErrorBody{Message: "missing session"})
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil || (!allowed.Empty() && !allowed.Contains(role)) {
				return c.JSON(http.StatusForbidden, ErrorBody{Message: "forbidden"})
			}
			return next(c)
		}
	}
}
