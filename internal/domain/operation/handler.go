package operation

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/pkg/envelope"
	"github.com/opticare/opticare/pkg/pagination"
)

// Module is the permission flag guarding in-patient operations.
const Module = "operations"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/operations", h.Admit)
	g.GET("/operations", h.List)
	g.GET("/operations/:id", h.Get)
	g.GET("/patients/:id/operations", h.ListByPatient)
	g.PUT("/operations/:id", h.Update)
	g.POST("/operations/:id/discharge", h.Discharge)
	g.DELETE("/operations/:id", h.Delete)
}

func (h *Handler) Admit(c echo.Context) error {
	var o Operation
	if err := c.Bind(&o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.Admit(c.Request().Context(), &o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not admit patient", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(o, "patient admitted"))
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var body struct {
		DischargedAt time.Time `json:"discharged_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	o, err := h.svc.Discharge(c.Request().Context(), id, body.DischargedAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("operation not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not discharge patient", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(o, "patient discharged"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("operation not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load operation", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(o))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	status := c.QueryParam("status")
	if status == "" {
		status = StatusAdmitted
	}
	items, total, err := h.svc.ListByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not list operations", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid patient id"))
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list operations", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var o Operation
	if err := c.Bind(&o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	o.ID = id
	if err := h.svc.Update(c.Request().Context(), &o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("operation not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update operation", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(o, "operation updated"))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("operation not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete operation", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "operation deleted"))
}
