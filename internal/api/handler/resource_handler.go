package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/core/ports"
)

// ConfirmDeleteHeader must repeat the id of the record being deleted.
const ConfirmDeleteHeader = "X-Confirm-Delete"

const maxPayloadBytes = 1 << 20

// ResourceHandler proxies the CRUD screens to the backend. Each method binds
// one catalog resource and returns the echo handler for it.
type ResourceHandler struct {
	client ports.ResourceClient
	log    zerolog.Logger
}

func NewResourceHandler(client ports.ResourceClient, log zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{client: client, log: log}
}

// List handles GET /api/<resource>.
func (h *ResourceHandler) List(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := h.client.List(c.Request().Context(), res)
		if err != nil {
			return err
		}
		return respondJSON(c, http.StatusOK, data)
	}
}

// Get handles GET /api/<resource>/:id, or GET /api/<resource> for singletons.
func (h *ResourceHandler) Get(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := h.client.Get(c.Request().Context(), res, c.Param("id"))
		if err != nil {
			return err
		}
		return respondJSON(c, http.StatusOK, data)
	}
}

// Create handles POST /api/<resource>.
func (h *ResourceHandler) Create(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readPayload(c)
		if err != nil {
			return err
		}
		data, err := h.client.Create(c.Request().Context(), res, body)
		if err != nil {
			return err
		}
		return respondJSON(c, http.StatusCreated, data)
	}
}

// Update handles PUT /api/<resource>/:id, or PUT /api/<resource> for singletons.
func (h *ResourceHandler) Update(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readPayload(c)
		if err != nil {
			return err
		}
		data, err := h.client.Update(c.Request().Context(), res, c.Param("id"), body)
		if err != nil {
			return err
		}
		return respondJSON(c, http.StatusOK, data)
	}
}

// Delete handles DELETE /api/<resource>/:id. The request must carry
// X-Confirm-Delete with the same id.
func (h *ResourceHandler) Delete(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if c.Request().Header.Get(ConfirmDeleteHeader) != id {
			return fmt.Errorf("delete %s/%s: %w", res.Name, id, domain.ErrDeleteNotConfirmed)
		}
		if err := h.client.Delete(c.Request().Context(), res, id); err != nil {
			return err
		}
		h.log.Info().Str("resource", res.Name).Str("id", id).Msg("record deleted")
		return c.NoContent(http.StatusNoContent)
	}
}

func readPayload(c echo.Context) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayloadBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable payload")
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "payload must be a JSON document")
	}
	return data, nil
}

func respondJSON(c echo.Context, status int, data json.RawMessage) error {
	if len(data) == 0 {
		return c.NoContent(status)
	}
	return c.JSONBlob(status, data)
}
