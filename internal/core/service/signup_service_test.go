package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

var newShop = ports.SignUpRequest{Username: "shop1", Email: "shop1@example.com", Password: "pw123"}

func TestSignUp_Success(t *testing.T) {
	var gotEmail, gotDigest, gotMerchant string
	var gotRole domain.Role
	client := &stubRegistrationClient{
		createMerchantFn: func(_ context.Context, email string) (string, error) {
			gotEmail = email
			return "m-7", nil
		},
		createAccountFn: func(_ context.Context, username, digest string, role domain.Role, merchantID string) error {
			gotDigest, gotRole, gotMerchant = digest, role, merchantID
			return nil
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	res := svc.SignUp(context.Background(), newShop)
	if !res.Success || res.Message != "" {
		t.Fatalf("expected success, got %+v", res)
	}
	if gotEmail != "shop1@example.com" || gotMerchant != "m-7" || gotRole != domain.RoleMerchant {
		t.Fatalf("unexpected calls: email=%q merchant=%q role=%s", gotEmail, gotMerchant, gotRole)
	}
	if gotDigest != HashPassword("pw123") {
		t.Fatalf("backend must receive the SHA-256 digest, got %q", gotDigest)
	}
	if len(client.deleted) != 0 {
		t.Fatalf("nothing to roll back, deleted %v", client.deleted)
	}
}

func TestSignUp_DuplicateUsernameDeletesMerchant(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) { return "m-7", nil },
		createAccountFn: func(context.Context, string, string, domain.Role, string) error {
			return &domain.AuthError{Kind: domain.KindRejected, Message: "DUPLICATE_USERNAME", Err: domain.ErrDuplicateUsername}
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	res := svc.SignUp(context.Background(), newShop)
	if res.Success || res.Message != msgDuplicateUsername {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "m-7" {
		t.Fatalf("the new merchant must be deleted, got %v", client.deleted)
	}
}

func TestSignUp_RollbackFailureKeepsMessage(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) { return "m-7", nil },
		createAccountFn: func(context.Context, string, string, domain.Role, string) error {
			return &domain.AuthError{Kind: domain.KindRejected, Err: domain.ErrDuplicateUsername}
		},
		deleteMerchantFn: func(context.Context, string) error { return errBackendDown },
	}
	svc := NewSignUpService(client, zerolog.Nop())

	if res := svc.SignUp(context.Background(), newShop); res.Message != msgDuplicateUsername {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) {
			return "", &domain.AuthError{Kind: domain.KindRejected, Message: "DUPLICATE_EMAIL", Err: domain.ErrDuplicateEmail}
		},
		createAccountFn: func(context.Context, string, string, domain.Role, string) error {
			t.Fatal("no account without a merchant")
			return nil
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	res := svc.SignUp(context.Background(), newShop)
	if res.Success || res.Message != msgDuplicateEmail {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(client.deleted) != 0 {
		t.Fatalf("no merchant was created, deleted %v", client.deleted)
	}
}

func TestSignUp_AccountTransportErrorIsNotRolledBack(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) { return "m-7", nil },
		createAccountFn: func(context.Context, string, string, domain.Role, string) error {
			return &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: errBackendDown}
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	res := svc.SignUp(context.Background(), newShop)
	if res.Success || res.Message != msgUnreachable {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(client.deleted) != 0 {
		t.Fatalf("the account may exist, the merchant must stay: %v", client.deleted)
	}
}

func TestSignUp_OtherRejectionsShowBackendMessage(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) { return "m-7", nil },
		createAccountFn: func(context.Context, string, string, domain.Role, string) error {
			return &domain.AuthError{Kind: domain.KindRejected, Message: "Password too weak"}
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	res := svc.SignUp(context.Background(), newShop)
	if res.Message != "Password too weak" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("a refused account leaves no merchant behind, deleted %v", client.deleted)
	}
}

func TestSignUp_MissingFields(t *testing.T) {
	client := &stubRegistrationClient{
		createMerchantFn: func(context.Context, string) (string, error) {
			t.Fatal("backend must not be called")
			return "", nil
		},
	}
	svc := NewSignUpService(client, zerolog.Nop())

	for _, req := range []ports.SignUpRequest{
		{Email: "a@b.co", Password: "pw"},
		{Username: "u", Password: "pw"},
		{Username: "u", Email: "a@b.co"},
		{Username: "  ", Email: "a@b.co", Password: "pw"},
	} {
		if res := svc.SignUp(context.Background(), req); res.Success || res.Message != msgSignUpMissingFields {
			t.Fatalf("%+v: unexpected result %+v", req, res)
		}
	}
}
