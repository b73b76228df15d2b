package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// IdentityKey is the echo context key under which Guard stores the identity
// it admitted.
const IdentityKey = "identity"

// StateSource exposes the current auth state. service.AuthService implements it.
type StateSource interface {
	State() domain.AuthState
}

// Authenticated admits any signed-in identity, whatever its role.
func Authenticated(auth StateSource) echo.MiddlewareFunc {
	return Guard(auth)
}

// CurrentIdentity returns the identity stored by Guard for this request.
func CurrentIdentity(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
