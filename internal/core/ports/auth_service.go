package ports

import (
	"context"
	"net/http"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// LoginResult is what the sign-in screen shows. Message is empty on success.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthService is the authentication lifecycle as seen by the console screens.
type AuthService interface {
	Login(ctx context.Context, username, password string, role domain.Role) LoginResult
	Logout(ctx context.Context)
	IsAuthenticated() bool
	CurrentIdentity() (domain.Identity, bool)
	State() domain.AuthState
	LastLoginError() string
	// HTTPClient returns a client for resource requests: it carries the
	// session cookie and invalidates the session on authorization failures.
	HTTPClient() *http.Client
}
