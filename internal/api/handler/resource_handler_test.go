package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
)

func resourceContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func lookup(t *testing.T, name string) domain.Resource {
	t.Helper()
	res, ok := domain.LookupResource(name)
	if !ok {
		t.Fatalf("unknown resource %s", name)
	}
	return res
}

func TestResourceHandler_List(t *testing.T) {
	stub := &stubResourceClient{
		listFn: func(_ context.Context, res domain.Resource) (json.RawMessage, error) {
			if res.Name != "products" {
				t.Fatalf("unexpected resource %s", res.Name)
			}
			return json.RawMessage(`[{"id":"p1"}]`), nil
		},
	}
	h := NewResourceHandler(stub, zerolog.Nop())

	c, rec := resourceContext(http.MethodGet, "/api/products", "")
	if err := h.List(lookup(t, "products"))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != `[{"id":"p1"}]` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestResourceHandler_GetPassesID(t *testing.T) {
	stub := &stubResourceClient{
		getFn: func(_ context.Context, _ domain.Resource, id string) (json.RawMessage, error) {
			if id != "c7" {
				t.Fatalf("expected id c7, got %s", id)
			}
			return json.RawMessage(`{"id":"c7"}`), nil
		},
	}
	h := NewResourceHandler(stub, zerolog.Nop())

	c, rec := resourceContext(http.MethodGet, "/api/categories/c7", "", "id", "c7")
	if err := h.Get(lookup(t, "categories"))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestResourceHandler_CreateAndUpdate(t *testing.T) {
	var created, updated string
	stub := &stubResourceClient{
		createFn: func(_ context.Context, _ domain.Resource, body json.RawMessage) (json.RawMessage, error) {
			created = string(body)
			return json.RawMessage(`{"id":"d1","name":"2x1"}`), nil
		},
		updateFn: func(_ context.Context, _ domain.Resource, id string, body json.RawMessage) (json.RawMessage, error) {
			updated = id + " " + string(body)
			return nil, nil
		},
	}
	h := NewResourceHandler(stub, zerolog.Nop())
	deals := lookup(t, "deals")

	c, rec := resourceContext(http.MethodPost, "/api/deals", `{"name":"2x1"}`)
	if err := h.Create(deals)(c); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if rec.Code != http.StatusCreated || created != `{"name":"2x1"}` {
		t.Fatalf("unexpected create %d %q", rec.Code, created)
	}

	c, rec = resourceContext(http.MethodPut, "/api/deals/d1", `{"name":"3x2"}`, "id", "d1")
	if err := h.Update(deals)(c); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if rec.Code != http.StatusOK || updated != `d1 {"name":"3x2"}` {
		t.Fatalf("unexpected update %d %q", rec.Code, updated)
	}
	if rec.Body.Len() != 0 {
		t.Fatal("empty backend body yields an empty response")
	}
}

func TestResourceHandler_RejectsInvalidPayload(t *testing.T) {
	h := NewResourceHandler(&stubResourceClient{}, zerolog.Nop())

	for _, body := range []string{"", "{", "not json"} {
		c, _ := resourceContext(http.MethodPost, "/api/deals", body)
		err := h.Create(lookup(t, "deals"))(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %v", body, err)
		}
	}
}

func TestResourceHandler_DeleteRequiresConfirmation(t *testing.T) {
	deleted := ""
	stub := &stubResourceClient{
		deleteFn: func(_ context.Context, _ domain.Resource, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewResourceHandler(stub, zerolog.Nop())
	products := lookup(t, "products")

	for _, header := range []string{"", "p2"} {
		c, _ := resourceContext(http.MethodDelete, "/api/products/p1", "", "id", "p1")
		if header != "" {
			c.Request().Header.Set(ConfirmDeleteHeader, header)
		}
		if err := h.Delete(products)(c); !errors.Is(err, domain.ErrDeleteNotConfirmed) {
			t.Fatalf("header %q: expected ErrDeleteNotConfirmed, got %v", header, err)
		}
	}
	if deleted != "" {
		t.Fatal("an unconfirmed delete must not reach the backend")
	}

	c, rec := resourceContext(http.MethodDelete, "/api/products/p1", "", "id", "p1")
	c.Request().Header.Set(ConfirmDeleteHeader, "p1")
	if err := h.Delete(products)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "p1" {
		t.Fatalf("expected 204 and delete of p1, got %d %q", rec.Code, deleted)
	}
}

func TestResourceHandler_PropagatesClientErrors(t *testing.T) {
	stub := &stubResourceClient{
		listFn: func(context.Context, domain.Resource) (json.RawMessage, error) {
			return nil, domain.ErrSessionInvalidated
		},
	}
	h := NewResourceHandler(stub, zerolog.Nop())

	c, _ := resourceContext(http.MethodGet, "/api/products", "")
	if err := h.List(lookup(t, "products"))(c); !errors.Is(err, domain.ErrSessionInvalidated) {
		t.Fatalf("expected ErrSessionInvalidated, got %v", err)
	}
}
