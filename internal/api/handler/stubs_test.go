package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	state    domain.AuthState
	loginErr string
	loginFn  func(ctx context.Context, username, password string, role domain.Role) ports.LoginResult

	logoutCalls int
}

func (s *stubAuthService) Login(ctx context.Context, username, password string, role domain.Role) ports.LoginResult {
	return s.loginFn(ctx, username, password, role)
}

func (s *stubAuthService) Logout(context.Context) {
	s.logoutCalls++
	s.state = domain.AnonymousState()
}

func (s *stubAuthService) IsAuthenticated() bool { return s.state.Authenticated() }

func (s *stubAuthService) CurrentIdentity() (domain.Identity, bool) {
	if !s.state.Authenticated() {
		return domain.Identity{}, false
	}
	return s.state.Identity.Clone(), true
}

func (s *stubAuthService) State() domain.AuthState { return s.state }

func (s *stubAuthService) LastLoginError() string { return s.loginErr }

func (s *stubAuthService) HTTPClient() *http.Client { return http.DefaultClient }

type stubRememberStore struct {
	username string
	calls    int
}

func (s *stubRememberStore) RememberedUsername(context.Context) string { return s.username }

func (s *stubRememberStore) Remember(_ context.Context, username string, remember bool) error {
	s.calls++
	if remember {
		s.username = username
	} else {
		s.username = ""
	}
	return nil
}

type stubResourceClient struct {
	listFn   func(ctx context.Context, res domain.Resource) (json.RawMessage, error)
	getFn    func(ctx context.Context, res domain.Resource, id string) (json.RawMessage, error)
	createFn func(ctx context.Context, res domain.Resource, body json.RawMessage) (json.RawMessage, error)
	updateFn func(ctx context.Context, res domain.Resource, id string, body json.RawMessage) (json.RawMessage, error)
	deleteFn func(ctx context.Context, res domain.Resource, id string) error
}

func (s *stubResourceClient) List(ctx context.Context, res domain.Resource) (json.RawMessage, error) {
	return s.listFn(ctx, res)
}

func (s *stubResourceClient) Get(ctx context.Context, res domain.Resource, id string) (json.RawMessage, error) {
	return s.getFn(ctx, res, id)
}

func (s *stubResourceClient) Create(ctx context.Context, res domain.Resource, body json.RawMessage) (json.RawMessage, error) {
	return s.createFn(ctx, res, body)
}

func (s *stubResourceClient) Update(ctx context.Context, res domain.Resource, id string, body json.RawMessage) (json.RawMessage, error) {
	return s.updateFn(ctx, res, id, body)
}

func (s *stubResourceClient) Delete(ctx context.Context, res domain.Resource, id string) error {
	return s.deleteFn(ctx, res, id)
}

type stubSignUpService struct {
	signUpFn func(ctx context.Context, req ports.SignUpRequest) ports.LoginResult
	calls    int
}

func (s *stubSignUpService) SignUp(ctx context.Context, req ports.SignUpRequest) ports.LoginResult {
	s.calls++
	return s.signUpFn(ctx, req)
}
