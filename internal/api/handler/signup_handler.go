package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

// SignUpPath serves the merchant self-registration screen.
const SignUpPath = "/sign-up"

const msgSignInAfterSignUp = "Your account was created, please sign in."

// SignUpHandler serves merchant self-registration.
type SignUpHandler struct {
	signUp      ports.SignUpService
	authService ports.AuthService
	log         zerolog.Logger
}

func NewSignUpHandler(signUp ports.SignUpService, authService ports.AuthService, log zerolog.Logger) *SignUpHandler {
	return &SignUpHandler{signUp: signUp, authService: authService, log: log}
}

type signUpRequest struct {
	Username      string `json:"username" validate:"required,max=128"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	TermsAccepted bool   `json:"termsAccepted" validate:"required"`
}

type signUpResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type signUpScreenResponse struct {
	Status string `json:"status"`
}

// Screen returns the sign-up screen model.
//
// @Summary      Sign-up screen
// @Tags         session
// @Produce      json
// @Success      200  {object}  signUpScreenResponse
// @Success      303  "already signed in, redirect to /dashboard"
// @Router       /sign-up [get]
func (h *SignUpHandler) Screen(c echo.Context) error {
	state := h.authService.State()
	if state.Authenticated() {
		return c.Redirect(http.StatusSeeOther, DashboardPath)
	}
	return c.JSON(http.StatusOK, signUpScreenResponse{Status: state.Status.String()})
}

// SignUp registers a merchant and signs the new account in.
//
// @Summary      Merchant sign-up
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  signUpResponse
// @Failure      409   {object}  signUpResponse
// @Router       /sign-up [post]
func (h *SignUpHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, signUpResponse{Message: "invalid payload"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, signUpResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	res := h.signUp.SignUp(ctx, ports.SignUpRequest{Username: req.Username, Email: req.Email, Password: req.Password})
	if !res.Success {
		return c.JSON(http.StatusConflict, signUpResponse{Message: res.Message})
	}

	login := h.authService.Login(ctx, req.Username, req.Password, domain.RoleMerchant)
	if !login.Success {
		h.log.Warn().Str("username", req.Username).Str("reason", login.Message).Msg("sign-in after sign-up failed")
		return c.JSON(http.StatusCreated, signUpResponse{Success: true, Message: msgSignInAfterSignUp, Redirect: "/"})
	}
	return c.JSON(http.StatusCreated, signUpResponse{Success: true, Redirect: DashboardPath})
}
