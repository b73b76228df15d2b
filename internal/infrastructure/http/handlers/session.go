package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/devbackend"
	"github.com/99minutos/backoffice/internal/infrastructure/http/middleware"
)

const (
	msgExpiringSoon = "Token will expire soon"
	msgSessionValid = "Session is valid"
)

// SessionHandler serves login, logout and verifySession.
type SessionHandler struct {
	svc *devbackend.Service
	log zerolog.Logger
}

func NewSessionHandler(svc *devbackend.Service, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: log}
}

type loginRequest struct {
	Username       string `json:"username"`
	PasswordDigest string `json:"passwordDigest"`
	Role           string `json:"role"`
}

type loginResponse struct {
	User    *domain.Identity `json:"user,omitempty"`
	Message string           `json:"message"`
}

type verifyResponse struct {
	Valid     bool             `json:"valid"`
	Message   string           `json:"message"`
	IsExpired bool             `json:"isExpired,omitempty"`
	User      *domain.Identity `json:"user,omitempty"`
}

// Login checks the digest and sets the session cookie.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "invalid payload"})
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "Invalid account type"})
	}

	user, sess, err := h.svc.Login(c.Request().Context(), req.Username, req.PasswordDigest, role)
	switch {
	case errors.Is(err, devbackend.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, middleware.ErrorBody{Message: "Invalid username or password"})
	case errors.Is(err, devbackend.ErrRoleMismatch):
		return c.JSON(http.StatusForbidden, middleware.ErrorBody{Message: "This account cannot sign in as " + role.String()})
	case err != nil:
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	id := user.Identity()
	h.log.Info().Str("username", user.Username).Str("role", role.String()).Msg("session issued")
	return c.JSON(http.StatusOK, loginResponse{User: &id, Message: "Login successful"})
}

// Logout revokes the session and clears the cookie. It succeeds without a session.
func (h *SessionHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.CookieName); err == nil {
		h.svc.Revoke(cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, middleware.ErrorBody{Message: "Logged out"})
}

// VerifySession reports whether the cookie still holds a valid session.
func (h *SessionHandler) VerifySession(c echo.Context) error {
	cookie, err := c.Cookie(middleware.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, verifyResponse{Message: "missing session"})
	}

	v, err := h.svc.Verify(cookie.Value)
	if err != nil {
		expired := errors.Is(err, devbackend.ErrSessionExpired)
		return c.JSON(http.StatusUnauthorized, verifyResponse{Message: err.Error(), IsExpired: expired})
	}

	id, err := v.Claims.Identity()
	if err != nil {
		return c.JSON(http.StatusUnauthorized, verifyResponse{Message: "invalid session"})
	}
	msg := msgSessionValid
	if v.ExpiringSoon {
		msg = msgExpiringSoon
	}
	return c.JSON(http.StatusOK, verifyResponse{Valid: true, Message: msg, User: &id})
}
