package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
	"github.com/99minutos/backoffice/internal/pkg/metrics"
)

// HTTPClientSource hands out the session-scoped HTTP client. AuthService
// implements it.
type HTTPClientSource interface {
	HTTPClient() *http.Client
}

// ResourceClient performs CRUD calls against /<resource>[/<id>] on the backend
// through the session's HTTP client, so authorization failures invalidate
// the session.
type ResourceClient struct {
	base    *url.URL
	clients HTTPClientSource
	log     zerolog.Logger
}

var _ ports.ResourceClient = (*ResourceClient)(nil)

func NewResourceClient(base *url.URL, clients HTTPClientSource, log zerolog.Logger) *ResourceClient {
	return &ResourceClient{base: base, clients: clients, log: log}
}

func (c *ResourceClient) List(ctx context.Context, res domain.Resource) (json.RawMessage, error) {
	return c.call(ctx, res, domain.OpList, http.MethodGet, "", nil)
}

func (c *ResourceClient) Get(ctx context.Context, res domain.Resource, id string) (json.RawMessage, error) {
	return c.call(ctx, res, domain.OpGet, http.MethodGet, id, nil)
}

func (c *ResourceClient) Create(ctx context.Context, res domain.Resource, body json.RawMessage) (json.RawMessage, error) {
	return c.call(ctx, res, domain.OpCreate, http.MethodPost, "", body)
}

func (c *ResourceClient) Update(ctx context.Context, res domain.Resource, id string, body json.RawMessage) (json.RawMessage, error) {
	return c.call(ctx, res, domain.OpUpdate, http.MethodPut, id, body)
}

func (c *ResourceClient) Delete(ctx context.Context, res domain.Resource, id string) error {
	_, err := c.call(ctx, res, domain.OpDelete, http.MethodDelete, id, nil)
	return err
}

func (c *ResourceClient) resourceURL(res domain.Resource, id string) (string, error) {
	u := c.base.JoinPath(res.Name)
	if id == "" || res.Singleton {
		return u.String(), nil
	}
	if err := appendID(u, id); err != nil {
		return "", fmt.Errorf("%s %q: %w", res.Name, id, err)
	}
	return u.String(), nil
}

// appendID adds id to u as a single escaped path segment, so an id can never
// leave the collection it was requested from.
func appendID(u *url.URL, id string) error {
	if id == "" || id == "." || id == ".." {
		return domain.ErrNotFound
	}
	u.RawPath = u.EscapedPath() + "/" + url.PathEscape(id)
	u.Path += "/" + id
	return nil
}

func (c *ResourceClient) call(ctx context.Context, res domain.Resource, op domain.Operation, method, id string, body json.RawMessage) (json.RawMessage, error) {
	if !res.Allows(op) {
		return nil, fmt.Errorf("%s %s: %w", op, res.Name, domain.ErrOperationNotAllowed)
	}

	var payload any
	if body != nil {
		payload = body
	}
	target, err := c.resourceURL(res, id)
	if err != nil {
		return nil, err
	}
	req, err := newJSONRequest(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.clients.HTTPClient().Do(req)
	label := res.Name + "." + op.String()
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(label, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%s %s: %w: %w", op, res.Name, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(label, "ok").Observe(time.Since(start).Seconds())

	if err := statusError(resp); err != nil {
		c.log.Debug().Int("status", resp.StatusCode).Str("resource", res.Name).Str("op", op.String()).Msg("resource request refused")
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", res.Name, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: %w", op, res.Name, domain.ErrUnexpectedResponse)
	}
	return json.RawMessage(data), nil
}

// statusError maps a non-2xx resource response to a domain error. The
// transport already invalidated the session when it applies.
func statusError(resp *http.Response) error {
	if success(resp.StatusCode) {
		return nil
	}
	if _, ok := InvalidationReason(resp); ok {
		return domain.ErrSessionInvalidated
	}
	switch resp.StatusCode {
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if json.Unmarshal(data, &payload) != nil {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	msg := orDefault(payload.Message, orDefault(payload.Error, http.StatusText(resp.StatusCode)))
	return &domain.UpstreamError{Status: resp.StatusCode, Message: msg}
}
