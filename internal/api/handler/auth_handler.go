package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

// DashboardPath is where an authenticated visitor of the sign-in screen goes.
const DashboardPath = "/dashboard"

// RememberStore keeps the username pre-filled on the sign-in screen.
type RememberStore interface {
	RememberedUsername(ctx context.Context) string
	Remember(ctx context.Context, username string, remember bool) error
}

// AuthHandler serves the sign-in, session and profile screens.
type AuthHandler struct {
	authService ports.AuthService
	prefs       RememberStore
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, prefs RememberStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, prefs: prefs, log: log}
}

type loginRequest struct {
	Username   string `json:"username" validate:"required,max=128"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=merchant admin"`
	RememberMe bool   `json:"rememberMe"`
}

type signInResponse struct {
	Status             string   `json:"status"`
	RememberedUsername string   `json:"rememberedUsername,omitempty"`
	Error              string   `json:"error,omitempty"`
	Roles              []string `json:"roles"`
}

type sessionResponse struct {
	Status   string           `json:"status"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

type navItem struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Operations []string `json:"operations"`
}

type dashboardResponse struct {
	Identity   domain.Identity `json:"identity"`
	Navigation []navItem       `json:"navigation"`
}

type accessDeniedResponse struct {
	Error string `json:"error"`
	Role  string `json:"role"`
}

// SignIn returns the sign-in screen model.
//
// @Summary      Sign-in screen
// @Tags         session
// @Produce      json
// @Success      200  {object}  signInResponse
// @Success      303  "already signed in, redirect to /dashboard"
// @Router       / [get]
func (h *AuthHandler) SignIn(c echo.Context) error {
	state := h.authService.State()
	if state.Authenticated() {
		return c.Redirect(http.StatusSeeOther, DashboardPath)
	}
	return c.JSON(http.StatusOK, signInResponse{
		Status:             state.Status.String(),
		RememberedUsername: h.prefs.RememberedUsername(c.Request().Context()),
		Error:              h.authService.LastLoginError(),
		Roles:              []string{domain.RoleMerchant.String(), domain.RoleAdmin.String()},
	})
}

// Login signs in against the backend.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and account type"
// @Success      200   {object}  ports.LoginResult
// @Failure      400   {object}  ports.LoginResult
// @Failure      401   {object}  ports.LoginResult
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ports.LoginResult{Message: "invalid payload"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ports.LoginResult{Message: err.Error()})
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ports.LoginResult{Message: err.Error()})
	}

	ctx := c.Request().Context()
	res := h.authService.Login(ctx, req.Username, req.Password, role)
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, res)
	}

	if err := h.prefs.Remember(ctx, req.Username, req.RememberMe); err != nil {
		h.log.Warn().Err(err).Msg("remembered username not updated")
	}
	return c.JSON(http.StatusOK, res)
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  ports.LoginResult
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, ports.LoginResult{Success: true})
}

// Session reports the current auth state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	state := h.authService.State()
	return c.JSON(http.StatusOK, sessionResponse{Status: state.Status.String(), Identity: state.Identity})
}

// Dashboard returns the identity and the screens its role may open.
//
// @Summary      Dashboard
// @Tags         screens
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Success      303  "not signed in"
// @Failure      503  {object}  map[string]string
// @Router       /dashboard [get]
func (h *AuthHandler) Dashboard(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	resources := domain.ResourcesFor(id.Role)
	nav := make([]navItem, 0, len(resources))
	for _, r := range resources {
		nav = append(nav, navItem{
			Name:       r.Name,
			Title:      r.Title,
			Path:       "/api/" + r.Name,
			Operations: operations(r),
		})
	}
	return c.JSON(http.StatusOK, dashboardResponse{Identity: id, Navigation: nav})
}

// Profile returns the signed-in identity.
//
// @Summary      View profile
// @Tags         screens
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /view-profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

// AccessDenied is the target of role redirects.
//
// @Summary      Access denied
// @Tags         screens
// @Produce      json
// @Failure      403  {object}  accessDeniedResponse
// @Router       /access-denied [get]
func (h *AuthHandler) AccessDenied(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusForbidden, accessDeniedResponse{
		Error: "you do not have permission to view this page",
		Role:  id.Role.String(),
	})
}

func operations(r domain.Resource) []string {
	all := []domain.Operation{domain.OpList, domain.OpGet, domain.OpCreate, domain.OpUpdate, domain.OpDelete}
	out := make([]string, 0, len(all))
	for _, op := range all {
		if r.Allows(op) {
			out = append(out, op.String())
		}
	}
	return out
}
