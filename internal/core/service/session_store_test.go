package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	kv := newStubKV()
	store := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()

	if _, found := store.Load(ctx); found {
		t.Fatal("expected empty store")
	}

	id, err := domain.DecodeIdentity([]byte(`{"username":"m1","role":"merchant","merchantId":"7","shop":"Corner"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := store.Save(ctx, *id); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found := store.Load(ctx)
	if !found {
		t.Fatal("expected stored identity")
	}
	if got.Username != "m1" || got.Role != domain.RoleMerchant || got.MerchantID != "7" {
		t.Fatalf("unexpected identity %+v", got)
	}
	if string(got.Extra["shop"]) != `"Corner"` {
		t.Fatalf("extra field lost: %v", got.Extra)
	}

	store.Clear(ctx)
	if _, found := store.Load(ctx); found {
		t.Fatal("expected identity to be cleared")
	}
}

func TestSessionStore_CorruptRecordIsCleared(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":     "not-json",
		"missing role": `{"username":"m1"}`,
		"bad role":     `{"username":"m1","role":"owner"}`,
	} {
		kv := newStubKV()
		kv.data[IdentityKey] = []byte(raw)
		store := NewSessionStore(kv, zerolog.Nop())

		if _, found := store.Load(context.Background()); found {
			t.Fatalf("%s: corrupt record must be reported absent", name)
		}
		if kv.has(IdentityKey) {
			t.Fatalf("%s: corrupt record must be removed", name)
		}
	}
}

func TestSessionStore_SaveRejectsInvalidIdentity(t *testing.T) {
	kv := newStubKV()
	store := NewSessionStore(kv, zerolog.Nop())

	err := store.Save(context.Background(), domain.Identity{Username: "", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
	if kv.has(IdentityKey) {
		t.Fatal("invalid identity must not be written")
	}
}

func TestSessionStore_ReadFailureIsAbsent(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.New("disk on fire")
	store := NewSessionStore(kv, zerolog.Nop())

	if _, found := store.Load(context.Background()); found {
		t.Fatal("read failure must look like an empty store")
	}
}

func TestPreferences(t *testing.T) {
	kv := newStubKV()
	prefs := NewPreferences(kv, zerolog.Nop())
	ctx := context.Background()

	if got := prefs.RememberedUsername(ctx); got != "" {
		t.Fatalf("expected nothing remembered, got %q", got)
	}
	if err := prefs.Remember(ctx, "m1", true); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if got := prefs.RememberedUsername(ctx); got != "m1" {
		t.Fatalf("expected m1, got %q", got)
	}
	if err := prefs.Remember(ctx, "m1", false); err != nil {
		t.Fatalf("Remember(false): %v", err)
	}
	if got := prefs.RememberedUsername(ctx); got != "" {
		t.Fatalf("expected username forgotten, got %q", got)
	}
}

func TestPreferences_CorruptEntryIsRemoved(t *testing.T) {
	kv := newStubKV()
	kv.data[RememberedUserKey] = []byte("not-json")
	prefs := NewPreferences(kv, zerolog.Nop())

	if got := prefs.RememberedUsername(context.Background()); got != "" {
		t.Fatalf("expected empty username, got %q", got)
	}
	if kv.has(RememberedUserKey) {
		t.Fatal("corrupt entry must be removed")
	}
}

func TestPreferences_IndependentFromIdentity(t *testing.T) {
	kv := newStubKV()
	store := NewSessionStore(kv, zerolog.Nop())
	prefs := NewPreferences(kv, zerolog.Nop())
	ctx := context.Background()

	_ = prefs.Remember(ctx, "m1", true)
	_ = store.Save(ctx, domain.Identity{Username: "m1", Role: domain.RoleMerchant})
	store.Clear(ctx)

	if got := prefs.RememberedUsername(ctx); got != "m1" {
		t.Fatalf("clearing the identity must keep the remembered username, got %q", got)
	}
}
