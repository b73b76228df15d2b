package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/backoffice/internal/api/middleware"
	"github.com/99minutos/backoffice/internal/core/domain"
)

// ctxIdentity returns the identity admitted by the guard. Handlers mounted
// without a guard get a 401; that is a routing bug, not a user error.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || id.Username == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated identity")
	}
	return id, nil
}
