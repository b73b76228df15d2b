package ports

import (
	"context"
	"net/http"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// VerifyResult is the backend's opinion about the current session.
type VerifyResult struct {
	Valid bool
	// ExpiringSoon is a warning only; it never changes the auth state.
	ExpiringSoon bool
}

// SessionClient performs the network half of the session lifecycle.
// Errors are *domain.AuthError.
type SessionClient interface {
	Login(ctx context.Context, username, passwordDigest string, role domain.Role) (*domain.Identity, error)
	Logout(ctx context.Context) error
	VerifySession(ctx context.Context) (VerifyResult, error)
}

// Invalidator is notified when any response signals that the session is gone.
// The generation is captured before the request is sent, so that a response
// to a request issued under an older session cannot clear a newer one.
type Invalidator interface {
	Generation() uint64
	InvalidateGeneration(gen uint64, reason string) bool
}

// TransportFactory builds the authenticated HTTP client used by resource screens.
type TransportFactory interface {
	NewHTTPClient(inv Invalidator) *http.Client
}
