package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

const (
	merchantsPath = "merchants"
	accountsPath  = "userAdmins"

	// Error codes the backend puts in the "error" field of a rejected sign-up.
	codeDuplicateEmail    = "DUPLICATE_EMAIL"
	codeDuplicateUsername = "DUPLICATE_USERNAME"

	msgSignUpFailed = "An error occurred during signup. Please try again."
)

var _ ports.RegistrationClient = (*Client)(nil)

type createMerchantRequest struct {
	Email string `json:"email"`
}

type createMerchantResponse struct {
	NewMerchant json.RawMessage `json:"newMerchant"`
}

type createAccountRequest struct {
	Username       string `json:"username"`
	PasswordDigest string `json:"passwordDigest"`
	Role           string `json:"role"`
	MerchantID     string `json:"merchantId"`
}

type rejectionBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CreateMerchant creates a merchant from an email address alone and returns
// its id.
func (c *Client) CreateMerchant(ctx context.Context, email string) (string, error) {
	target := c.base.JoinPath(merchantsPath, "createMerchantWithEmailOnly").String()
	resp, err := c.do(ctx, "signup.merchant", http.MethodPost, target, createMerchantRequest{Email: email})
	if err != nil {
		return "", &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer drain(resp)

	if !success(resp.StatusCode) {
		return "", rejection(resp)
	}

	var payload createMerchantResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return "", &domain.AuthError{Kind: domain.KindProtocol, Message: msgSignUpFailed, Err: err}
	}
	id, err := domain.DecodeLooseString(payload.NewMerchant)
	if err != nil || id == "" {
		return "", &domain.AuthError{Kind: domain.KindProtocol, Message: "Failed to create merchant", Err: err}
	}
	return id, nil
}

// CreateAccount creates the console account attached to merchantID.
func (c *Client) CreateAccount(ctx context.Context, username, passwordDigest string, role domain.Role, merchantID string) error {
	body := createAccountRequest{
		Username:       username,
		PasswordDigest: passwordDigest,
		Role:           role.String(),
		MerchantID:     merchantID,
	}
	resp, err := c.do(ctx, "signup.account", http.MethodPost, c.base.JoinPath(accountsPath).String(), body)
	if err != nil {
		return &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer drain(resp)

	if !success(resp.StatusCode) {
		return rejection(resp)
	}
	return nil
}

// DeleteMerchant removes a merchant created by CreateMerchant.
func (c *Client) DeleteMerchant(ctx context.Context, merchantID string) error {
	u := c.base.JoinPath(merchantsPath)
	if err := appendID(u, merchantID); err != nil {
		return fmt.Errorf("delete merchant %q: %w", merchantID, err)
	}

	resp, err := c.do(ctx, "signup.rollback", http.MethodDelete, u.String(), nil)
	if err != nil {
		return &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer drain(resp)

	if !success(resp.StatusCode) {
		return rejection(resp)
	}
	return nil
}

// rejection turns a non-2xx sign-up answer into an AuthError. Known duplicate
// codes are attached as the cause so errors.Is can tell them apart.
func rejection(resp *http.Response) error {
	var body rejectionBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = json.Unmarshal(data, &body)

	ae := &domain.AuthError{
		Kind:    domain.KindRejected,
		Message: orDefault(body.Message, orDefault(body.Error, msgSignUpFailed)),
	}
	switch body.Error {
	case codeDuplicateEmail:
		ae.Err = domain.ErrDuplicateEmail
	case codeDuplicateUsername:
		ae.Err = domain.ErrDuplicateUsername
	}
	return ae
}
