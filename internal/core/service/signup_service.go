package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/pkg/metrics"
)

const (
	msgSignUpMissingFields = "Username, email and password are required"
	msgDuplicateEmail      = "This email is already registered. Please use a different email or sign in."
	msgDuplicateUsername   = "This username is already taken. Please choose a different username."
	msgSignUpFailed        = "An error occurred during signup. Please try again."
)

// SignUpService registers merchants: it creates the merchant from its email,
// then the merchant account. When the account is refused the merchant is
// deleted again so the email can be reused.
type SignUpService struct {
	client ports.RegistrationClient
	log    zerolog.Logger
}

var _ ports.SignUpService = (*SignUpService)(nil)

func NewSignUpService(client ports.RegistrationClient, log zerolog.Logger) *SignUpService {
	return &SignUpService{client: client, log: log}
}

// SignUp never touches the auth state; the caller signs the new account in.
func (s *SignUpService) SignUp(ctx context.Context, req ports.SignUpRequest) ports.LoginResult {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		metrics.SignUpsTotal.WithLabelValues("rejected").Inc()
		return ports.LoginResult{Message: msgSignUpMissingFields}
	}
	digest := HashPassword(req.Password)

	merchantID, err := s.client.CreateMerchant(ctx, email)
	if err != nil {
		s.log.Info().Err(err).Str("email", email).Msg("merchant not created")
		return s.failed(err)
	}

	err = s.client.CreateAccount(ctx, username, digest, domain.RoleMerchant, merchantID)
	if err != nil {
		s.log.Info().Err(err).Str("username", username).Str("merchant_id", merchantID).Msg("account not created")
		if errors.Is(err, domain.ErrCredentialsRejected) {
			s.rollback(ctx, merchantID)
		}
		return s.failed(err)
	}

	metrics.SignUpsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", username).Str("merchant_id", merchantID).Msg("merchant signed up")
	return ports.LoginResult{Success: true}
}

// rollback deletes a merchant left without an account. A transport failure
// on the account call is not rolled back: the account may exist.
func (s *SignUpService) rollback(ctx context.Context, merchantID string) {
	if err := s.client.DeleteMerchant(context.WithoutCancel(ctx), merchantID); err != nil {
		s.log.Warn().Err(err).Str("merchant_id", merchantID).Msg("orphan merchant not deleted")
	}
}

func (s *SignUpService) failed(err error) ports.LoginResult {
	msg, result := signUpFailure(err)
	metrics.SignUpsTotal.WithLabelValues(result).Inc()
	return ports.LoginResult{Message: msg}
}

func signUpFailure(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return msgDuplicateEmail, "duplicate_email"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return msgDuplicateUsername, "duplicate_username"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return msgUnreachable, "transport_error"
	}
	var ae *domain.AuthError
	if errors.As(err, &ae) && ae.Kind == domain.KindRejected && ae.Message != "" {
		return ae.Message, "rejected"
	}
	return msgSignUpFailed, "rejected"
}
