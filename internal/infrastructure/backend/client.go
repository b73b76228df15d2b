// Package backend talks to the external REST backend: the session endpoints
// used by the authentication lifecycle and the uniform resource endpoints
// behind the dashboard screens.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20

	// expiringSoonMessage is the verifySession message announcing expiry.
	expiringSoonMessage = "Token will expire soon"

	msgLoginFailed = "Login failed"
)

// Config captures the settings for reaching the backend.
type Config struct {
	// BaseURL is the backend origin, e.g. http://localhost:8080.
	BaseURL string
	// AuthPath prefixes the session endpoints, e.g. /userAdmins.
	AuthPath string
	Timeout  time.Duration
	// Transport is the underlying RoundTripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client implements ports.SessionClient and ports.TransportFactory. All
// requests share one cookie jar, so the session cookie set by login is
// attached to every later call.
type Client struct {
	base     *url.URL
	authPath string
	guard    *InvalidationTransport
	http     *http.Client
	log      zerolog.Logger
}

var (
	_ ports.SessionClient    = (*Client)(nil)
	_ ports.TransportFactory = (*Client)(nil)
)

// NewClient builds a client. jar may be nil for an in-memory jar.
func NewClient(cfg Config, jar http.CookieJar, log zerolog.Logger) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	authPath := "/" + strings.Trim(cfg.AuthPath, "/")
	if authPath == "/" {
		authPath = ""
	}

	if jar == nil {
		if jar, err = cookiejar.New(nil); err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
	}

	// A rejected login is a credential problem, not a dead session.
	guard := NewInvalidationTransport(cfg.Transport, authPath+"/login")

	c := &Client{
		base:     base,
		authPath: authPath,
		guard:    guard,
		http:     &http.Client{Jar: jar, Transport: guard, Timeout: timeout},
		log:      log,
	}
	return c, nil
}

// ParseBaseURL validates the backend origin.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("parse backend url: %q is not an absolute http(s) url", raw)
	}
	return u, nil
}

// NewHTTPClient binds inv to the shared transport and returns the client used
// by resource screens. Session operations share the same transport, so a 401
// from logout or verifySession also invalidates.
func (c *Client) NewHTTPClient(inv ports.Invalidator) *http.Client {
	c.guard.Bind(inv)
	return c.http
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

type loginRequest struct {
	Username       string `json:"username"`
	PasswordDigest string `json:"passwordDigest"`
	Role           string `json:"role"`
}

type loginResponse struct {
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
}

// Login posts the credentials. Expected failures come back as a
// *domain.AuthError with Kind KindRejected; network faults as KindTransport.
func (c *Client) Login(ctx context.Context, username, passwordDigest string, role domain.Role) (*domain.Identity, error) {
	body := loginRequest{Username: username, PasswordDigest: passwordDigest, Role: role.String()}
	resp, err := c.do(ctx, "login", http.MethodPost, c.authURL("login"), body)
	if err != nil {
		return nil, &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	var payload loginResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload)

	if !success(resp.StatusCode) {
		return nil, &domain.AuthError{Kind: domain.KindRejected, Message: orDefault(payload.Message, msgLoginFailed)}
	}
	if decodeErr != nil {
		return nil, &domain.AuthError{Kind: domain.KindProtocol, Message: msgLoginFailed, Err: decodeErr}
	}
	if len(payload.User) == 0 || string(payload.User) == "null" {
		return nil, &domain.AuthError{Kind: domain.KindRejected, Message: orDefault(payload.Message, msgLoginFailed)}
	}

	id, err := domain.DecodeIdentity(payload.User)
	if err != nil {
		return nil, &domain.AuthError{Kind: domain.KindProtocol, Message: msgLoginFailed, Err: err}
	}
	return id, nil
}

// Logout asks the backend to end the session. The caller treats any error as
// informational.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, "logout", http.MethodPost, c.authURL("logout"), struct{}{})
	if err != nil {
		return &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer drain(resp)

	if !success(resp.StatusCode) && resp.StatusCode != http.StatusUnauthorized {
		return &domain.AuthError{Kind: domain.KindRejected, Message: fmt.Sprintf("logout returned %d", resp.StatusCode)}
	}
	return nil
}

type verifyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// VerifySession asks whether the ambient session cookie is still valid.
func (c *Client) VerifySession(ctx context.Context) (ports.VerifyResult, error) {
	resp, err := c.do(ctx, "verify", http.MethodGet, c.authURL("verifySession"), nil)
	if err != nil {
		return ports.VerifyResult{}, &domain.AuthError{Kind: domain.KindTransport, Message: "backend unreachable", Err: err}
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return ports.VerifyResult{Valid: false}, nil
	}
	if !success(resp.StatusCode) {
		return ports.VerifyResult{}, &domain.AuthError{
			Kind:    domain.KindProtocol,
			Message: fmt.Sprintf("verifySession returned %d", resp.StatusCode),
		}
	}

	var payload verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return ports.VerifyResult{}, &domain.AuthError{Kind: domain.KindProtocol, Message: "malformed verifySession response", Err: err}
	}
	return ports.VerifyResult{
		Valid:        payload.Valid,
		ExpiringSoon: payload.Valid && payload.Message == expiringSoonMessage,
	}, nil
}

func (c *Client) authURL(endpoint string) string {
	return c.base.String() + c.authPath + "/" + endpoint
}

// do sends a JSON request and records its duration.
func (c *Client) do(ctx context.Context, op, method, target string, body any) (*http.Response, error) {
	req, err := newJSONRequest(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.BackendRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Str("url", target).Msg("backend request failed")
		return nil, err
	}
	return resp, nil
}

func newJSONRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if raw, ok := body.(json.RawMessage); ok {
			buf.Write(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
