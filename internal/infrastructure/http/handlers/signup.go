package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/devbackend"
	"github.com/99minutos/backoffice/internal/infrastructure/http/middleware"
)

// Error codes a rejected sign-up carries in the "error" field.
const (
	codeDuplicateEmail    = "DUPLICATE_EMAIL"
	codeDuplicateUsername = "DUPLICATE_USERNAME"
)

// SignUpHandler serves merchant self-registration. Merchant accounts can be
// created without a session; any other role needs an admin session.
type SignUpHandler struct {
	svc       *devbackend.Service
	merchants *devbackend.Merchants
	store     *devbackend.ResourceStore
	log       zerolog.Logger
}

func NewSignUpHandler(svc *devbackend.Service, merchants *devbackend.Merchants, store *devbackend.ResourceStore, log zerolog.Logger) *SignUpHandler {
	return &SignUpHandler{svc: svc, merchants: merchants, store: store, log: log}
}

type signUpError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type createMerchantRequest struct {
	Email string `json:"email"`
}

type createMerchantResponse struct {
	NewMerchant string `json:"newMerchant"`
}

type createAccountRequest struct {
	Username       string `json:"username"`
	PasswordDigest string `json:"passwordDigest"`
	Role           string `json:"role"`
	MerchantID     string `json:"merchantId"`
}

// CreateMerchant handles POST /merchants/createMerchantWithEmailOnly.
func (h *SignUpHandler) CreateMerchant(c echo.Context) error {
	var req createMerchantRequest
	if err := c.Bind(&req); err != nil || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, signUpError{Error: "INVALID_EMAIL", Message: "A valid email is required"})
	}

	id, err := h.merchants.CreateWithEmail(req.Email)
	switch {
	case errors.Is(err, devbackend.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, signUpError{Error: codeDuplicateEmail, Message: "Email already registered"})
	case err != nil:
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, createMerchantResponse{NewMerchant: id})
}

// DeletePendingMerchant handles DELETE /merchants/:id for merchants that never
// got an account.
func (h *SignUpHandler) DeletePendingMerchant(c echo.Context) error {
	if err := h.merchants.DeletePending(c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateAccount handles POST /userAdmins.
func (h *SignUpHandler) CreateAccount(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "invalid payload"})
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "Invalid account type"})
	}
	if role != domain.RoleMerchant && !h.isAdmin(c) {
		return c.JSON(http.StatusForbidden, middleware.ErrorBody{Message: "only admins can create " + role.String() + " accounts"})
	}
	if role == domain.RoleMerchant && !h.merchants.Exists(req.MerchantID) {
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "unknown merchant"})
	}

	user, err := h.svc.RegisterDigest(c.Request().Context(), strings.TrimSpace(req.Username), req.PasswordDigest, role, req.MerchantID)
	switch {
	case errors.Is(err, devbackend.ErrUserExists):
		return c.JSON(http.StatusConflict, signUpError{Error: codeDuplicateUsername, Message: "Username already exists"})
	case errors.Is(err, devbackend.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: "Username and password are required"})
	case err != nil:
		return err
	}
	if user.MerchantID != "" {
		h.merchants.Attach(user.MerchantID)
	}

	rec := map[string]any{"username": user.Username, "role": user.Role.String(), "merchantId": user.MerchantID}
	accounts, _ := domain.LookupResource("userAdmins")
	h.store.Put(accounts, user.ID, rec)
	rec["id"] = user.ID

	h.log.Info().Str("username", user.Username).Str("role", user.Role.String()).Msg("account created")
	return c.JSON(http.StatusCreated, rec)
}

func (h *SignUpHandler) isAdmin(c echo.Context) bool {
	cookie, err := c.Cookie(middleware.CookieName)
	if err != nil {
		return false
	}
	v, err := h.svc.Verify(cookie.Value)
	return err == nil && v.Claims.Role == domain.RoleAdmin.String()
}
