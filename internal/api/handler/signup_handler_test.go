package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

const validSignUp = `{"username":" shop1 ","email":"shop1@example.com","password":"pw123","termsAccepted":true}`

func decodeSignUp(t *testing.T, body []byte) signUpResponse {
	t.Helper()
	var resp signUpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestSignUpHandler_SignsNewAccountIn(t *testing.T) {
	e := newEcho()
	var got ports.SignUpRequest
	signUp := &stubSignUpService{signUpFn: func(_ context.Context, req ports.SignUpRequest) ports.LoginResult {
		got = req
		return ports.LoginResult{Success: true}
	}}
	auth := &stubAuthService{loginFn: func(_ context.Context, username, password string, role domain.Role) ports.LoginResult {
		if username != "shop1" || password != "pw123" || role != domain.RoleMerchant {
			t.Fatalf("unexpected login: %s %s %s", username, password, role)
		}
		return ports.LoginResult{Success: true}
	}}
	h := NewSignUpHandler(signUp, auth, zerolog.Nop())

	c, rec := postJSON(e, SignUpPath, validSignUp)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Username != "shop1" || got.Email != "shop1@example.com" || got.Password != "pw123" {
		t.Fatalf("unexpected sign-up request %+v", got)
	}
	if resp := decodeSignUp(t, rec.Body.Bytes()); !resp.Success || resp.Redirect != DashboardPath {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSignUpHandler_LoginAfterSignUpFails(t *testing.T) {
	e := newEcho()
	signUp := &stubSignUpService{signUpFn: func(context.Context, ports.SignUpRequest) ports.LoginResult {
		return ports.LoginResult{Success: true}
	}}
	auth := &stubAuthService{loginFn: func(context.Context, string, string, domain.Role) ports.LoginResult {
		return ports.LoginResult{Message: "Unable to reach the server. Please try again."}
	}}
	h := NewSignUpHandler(signUp, auth, zerolog.Nop())

	c, rec := postJSON(e, SignUpPath, validSignUp)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeSignUp(t, rec.Body.Bytes())
	if !resp.Success || resp.Redirect != "/" || resp.Message == "" {
		t.Fatalf("the account exists, the visitor is sent to sign in: %+v", resp)
	}
}

func TestSignUpHandler_Refused(t *testing.T) {
	e := newEcho()
	signUp := &stubSignUpService{signUpFn: func(context.Context, ports.SignUpRequest) ports.LoginResult {
		return ports.LoginResult{Message: "This username is already taken. Please choose a different username."}
	}}
	auth := &stubAuthService{loginFn: func(context.Context, string, string, domain.Role) ports.LoginResult {
		t.Fatal("login must not run after a refused sign-up")
		return ports.LoginResult{}
	}}
	h := NewSignUpHandler(signUp, auth, zerolog.Nop())

	c, rec := postJSON(e, SignUpPath, validSignUp)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if resp := decodeSignUp(t, rec.Body.Bytes()); resp.Success || !strings.Contains(resp.Message, "already taken") {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSignUpHandler_Validation(t *testing.T) {
	tests := map[string]string{
		"missing username": `{"email":"a@b.co","password":"pw","termsAccepted":true}`,
		"bad email":        `{"username":"u","email":"not-an-email","password":"pw","termsAccepted":true}`,
		"missing password": `{"username":"u","email":"a@b.co","termsAccepted":true}`,
		"terms refused":    `{"username":"u","email":"a@b.co","password":"pw","termsAccepted":false}`,
		"not json":         `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEcho()
			signUp := &stubSignUpService{}
			h := NewSignUpHandler(signUp, &stubAuthService{}, zerolog.Nop())

			c, rec := postJSON(e, SignUpPath, body)
			if err := h.SignUp(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if signUp.calls != 0 {
				t.Fatal("an invalid form must not reach the backend")
			}
		})
	}
}

func TestSignUpHandler_Screen(t *testing.T) {
	e := newEcho()
	h := NewSignUpHandler(&stubSignUpService{}, &stubAuthService{state: domain.AnonymousState()}, zerolog.Nop())
	c, rec := getWithIdentity(e, SignUpPath, nil)
	if err := h.Screen(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"anonymous"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	signedIn := domain.AuthenticatedState(domain.Identity{Username: "m1", Role: domain.RoleMerchant})
	h = NewSignUpHandler(&stubSignUpService{}, &stubAuthService{state: signedIn}, zerolog.Nop())
	c, rec = getWithIdentity(e, SignUpPath, nil)
	if err := h.Screen(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != DashboardPath {
		t.Fatalf("expected redirect to dashboard, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}
