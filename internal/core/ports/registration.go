package ports

import (
	"context"

	"github.com/99minutos/backoffice/internal/core/domain"
)

// SignUpRequest is the merchant self-registration form.
type SignUpRequest struct {
	Username string
	Email    string
	Password string
}

// SignUpService registers a new merchant account. Message is empty on success.
type SignUpService interface {
	SignUp(ctx context.Context, req SignUpRequest) LoginResult
}

// RegistrationClient performs the backend calls of a sign-up. Errors are
// *domain.AuthError; duplicates also match domain.ErrDuplicateEmail and
// domain.ErrDuplicateUsername.
type RegistrationClient interface {
	CreateMerchant(ctx context.Context, email string) (merchantID string, err error)
	CreateAccount(ctx context.Context, username, passwordDigest string, role domain.Role, merchantID string) error
	DeleteMerchant(ctx context.Context, merchantID string) error
}
