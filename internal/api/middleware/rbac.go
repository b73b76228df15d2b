package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/backoffice/internal/core/domain"
)

const (
	// LoginPath is where anonymous visitors are sent.
	LoginPath = "/"
	// AccessDeniedPath is where identities without a required role are sent.
	AccessDeniedPath = "/access-denied"
)

type loadingResponse struct {
	Status string `json:"status"`
}

// Guard protects a route with domain.Decide. The role list is checked when the
// route table is built; an invalid role panics at startup.
func Guard(auth StateSource, roles ...domain.Role) echo.MiddlewareFunc {
	return GuardSet(auth, domain.MustRoleSet(roles...))
}

// GuardSet is Guard for an already built set. The empty set admits any
// authenticated identity.
//
// Redirects use 303 so the protected URL is replaced rather than recorded.
// While the first verification is running the route answers 503 with a
// loading placeholder and never redirects.
func GuardSet(auth StateSource, required domain.RoleSet) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := auth.State()
			switch domain.Decide(state, required) {
			case domain.DecisionWait:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, loadingResponse{Status: state.Status.String()})
			case domain.DecisionRedirectLogin:
				return c.Redirect(http.StatusSeeOther, LoginPath)
			case domain.DecisionRedirectDenied:
				return c.Redirect(http.StatusSeeOther, AccessDeniedPath)
			}
			c.Set(IdentityKey, *state.Identity)
			return next(c)
		}
	}
}
