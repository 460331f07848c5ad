package dropdown

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/pkg/envelope"
)

// Module is the permission flag guarding pick-list management.
const Module = "dropdowns"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/dropdowns", h.Add)
	g.GET("/dropdowns/:field", h.List)
	g.DELETE("/dropdowns/:id", h.Delete)
}

type addRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) Add(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	o, err := h.svc.Add(c.Request().Context(), req.Field, req.Value)
	if err != nil {
		if errors.Is(err, ErrExists) {
			return c.JSON(http.StatusOK, envelope.OKMessage(o, "option already exists"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not add option", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(o, "option added"))
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), c.Param("field"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not list options", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("option not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete option", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "option deleted"))
}
