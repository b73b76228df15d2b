package devbackend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/service"
)

func newTestService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryUserRepository(), Config{
		Secret:        "test-secret",
		SessionTTL:    time.Hour,
		ExpiryWarning: 5 * time.Minute,
	})
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(context.Background(), "m1", "pw123", domain.RoleMerchant, "42"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return svc, &now
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	digest := service.HashPassword("pw123")

	user, sess, err := svc.Login(ctx, "m1", digest, domain.RoleMerchant)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "m1" || user.MerchantID != "42" || sess.Token == "" {
		t.Fatalf("unexpected login result %+v %+v", user, sess)
	}

	tests := []struct {
		name     string
		username string
		digest   string
		role     domain.Role
		want     error
	}{
		{"wrong password", "m1", service.HashPassword("nope"), domain.RoleMerchant, ErrInvalidCredentials},
		{"plaintext instead of digest", "m1", "pw123", domain.RoleMerchant, ErrInvalidCredentials},
		{"unknown user", "ghost", digest, domain.RoleMerchant, ErrInvalidCredentials},
		{"empty digest", "m1", "", domain.RoleMerchant, ErrInvalidCredentials},
		{"wrong account type", "m1", digest, domain.RoleAdmin, ErrRoleMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tt.username, tt.digest, tt.role); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Verify(t *testing.T) {
	svc, now := newTestService(t)
	_, sess, err := svc.Login(context.Background(), "m1", service.HashPassword("pw123"), domain.RoleMerchant)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	v, err := svc.Verify(sess.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.ExpiringSoon {
		t.Fatal("fresh session must not be expiring")
	}
	id, err := v.Claims.Identity()
	if err != nil || id.Username != "m1" || id.Role != domain.RoleMerchant || id.MerchantID != "42" {
		t.Fatalf("unexpected identity %+v %v", id, err)
	}

	*now = now.Add(56 * time.Minute)
	if v, err := svc.Verify(sess.Token); err != nil || !v.ExpiringSoon {
		t.Fatalf("expected expiring soon, got %+v %v", v, err)
	}

	*now = now.Add(5 * time.Minute)
	if _, err := svc.Verify(sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestService_VerifyRejectsForeignTokens(t *testing.T) {
	svc, _ := newTestService(t)

	other := NewService(NewMemoryUserRepository(), Config{Secret: "other-secret"})
	_, _ = other.Register(context.Background(), "m1", "pw123", domain.RoleMerchant, "")
	_, foreign, _ := other.Login(context.Background(), "m1", service.HashPassword("pw123"), domain.RoleMerchant)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "m1", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"other secret": foreign.Token,
		"alg none":     unsigned,
	} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("%s: expected ErrInvalidSession, got %v", name, err)
		}
	}
}

func TestService_Revoke(t *testing.T) {
	svc, _ := newTestService(t)
	_, sess, _ := svc.Login(context.Background(), "m1", service.HashPassword("pw123"), domain.RoleMerchant)
	_, other, _ := svc.Login(context.Background(), "m1", service.HashPassword("pw123"), domain.RoleMerchant)

	svc.Revoke(sess.Token)
	svc.Revoke("garbage")

	if _, err := svc.Verify(sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("revoked token must be invalid, got %v", err)
	}
	if _, err := svc.Verify(other.Token); err != nil {
		t.Fatalf("revoking one session must leave others alone: %v", err)
	}
}

func TestService_RegisterAndSeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "m1", "pw", domain.RoleMerchant, ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.Register(ctx, "x", "pw", domain.RoleUnknown, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	seeds, err := ParseSeedUsers([]string{"m1:other:merchant", "a1:admin123:admin"})
	if err != nil {
		t.Fatalf("ParseSeedUsers: %v", err)
	}
	if err := svc.Seed(ctx, seeds); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a1", service.HashPassword("admin123"), domain.RoleAdmin); err != nil {
		t.Fatalf("seeded admin must sign in: %v", err)
	}
	if _, _, err := svc.Login(ctx, "m1", service.HashPassword("pw123"), domain.RoleMerchant); err != nil {
		t.Fatalf("seeding must not overwrite an existing account: %v", err)
	}
}
