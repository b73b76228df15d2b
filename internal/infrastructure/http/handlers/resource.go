package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/backoffice/internal/core/domain"
	"github.com/99minutos/backoffice/internal/devbackend"
	"github.com/99minutos/backoffice/internal/infrastructure/http/middleware"
)

// ResourceHandler serves the in-memory CRUD of the development backend.
type ResourceHandler struct {
	store *devbackend.ResourceStore
}

func NewResourceHandler(store *devbackend.ResourceStore) *ResourceHandler {
	return &ResourceHandler{store: store}
}

func (h *ResourceHandler) List(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.store.List(res))
	}
}

func (h *ResourceHandler) Get(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := h.store.Get(res, c.Param("id"))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	}
}

func (h *ResourceHandler) Create(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
		if err != nil {
			return storeError(c, devbackend.ErrInvalidRecord)
		}
		rec, err := h.store.Create(res, json.RawMessage(body))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusCreated, rec)
	}
}

func (h *ResourceHandler) Update(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
		if err != nil {
			return storeError(c, devbackend.ErrInvalidRecord)
		}
		rec, err := h.store.Update(res, c.Param("id"), json.RawMessage(body))
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	}
}

func (h *ResourceHandler) Delete(res domain.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.store.Delete(res, c.Param("id")); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, devbackend.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, middleware.ErrorBody{Message: "record not found"})
	case errors.Is(err, devbackend.ErrInvalidRecord):
		return c.JSON(http.StatusBadRequest, middleware.ErrorBody{Message: err.Error()})
	}
	return err
}
