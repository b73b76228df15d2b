package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	putErr error
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string][]byte)}
}

func (s *stubKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubKV) Close() error { return nil }

func (s *stubKV) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type stubSessionClient struct {
	loginFn  func(ctx context.Context, username, digest string, role domain.Role) (*domain.Identity, error)
	logoutFn func(ctx context.Context) error
	verifyFn func(ctx context.Context) (ports.VerifyResult, error)

	mu          sync.Mutex
	verifyCalls int
	logoutCalls int
}

func (c *stubSessionClient) Login(ctx context.Context, username, digest string, role domain.Role) (*domain.Identity, error) {
	if c.loginFn == nil {
		return nil, &domain.AuthError{Kind: domain.KindRejected, Message: "Login failed"}
	}
	return c.loginFn(ctx, username, digest, role)
}

func (c *stubSessionClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.logoutCalls++
	c.mu.Unlock()
	if c.logoutFn == nil {
		return nil
	}
	return c.logoutFn(ctx)
}

func (c *stubSessionClient) VerifySession(ctx context.Context) (ports.VerifyResult, error) {
	c.mu.Lock()
	c.verifyCalls++
	c.mu.Unlock()
	if c.verifyFn == nil {
		return ports.VerifyResult{Valid: true}, nil
	}
	return c.verifyFn(ctx)
}

func (c *stubSessionClient) verifies() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifyCalls
}

type stubTransport struct {
	bound ports.Invalidator
}

func (t *stubTransport) NewHTTPClient(inv ports.Invalidator) *http.Client {
	t.bound = inv
	return &http.Client{}
}

var errBackendDown = errors.New("connection refused")

// identityFor is what a well-behaved backend answers for a login.
func identityFor(username string, role domain.Role) *domain.Identity {
	return &domain.Identity{Username: username, Role: role}
}

type stubRegistrationClient struct {
	createMerchantFn func(ctx context.Context, email string) (string, error)
	createAccountFn  func(ctx context.Context, username, digest string, role domain.Role, merchantID string) error
	deleteMerchantFn func(ctx context.Context, merchantID string) error

	deleted []string
}

func (c *stubRegistrationClient) CreateMerchant(ctx context.Context, email string) (string, error) {
	return c.createMerchantFn(ctx, email)
}

func (c *stubRegistrationClient) CreateAccount(ctx context.Context, username, digest string, role domain.Role, merchantID string) error {
	return c.createAccountFn(ctx, username, digest, role, merchantID)
}

func (c *stubRegistrationClient) DeleteMerchant(ctx context.Context, merchantID string) error {
	c.deleted = append(c.deleted, merchantID)
	if c.deleteMerchantFn == nil {
		return nil
	}
	return c.deleteMerchantFn(ctx, merchantID)
}
