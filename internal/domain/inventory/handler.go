package inventory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/internal/platform/metrics"
	"github.com/opticare/opticare/pkg/envelope"
	"github.com/opticare/opticare/pkg/pagination"
)

// Module is the permission flag guarding inventory operations.
const Module = "inventory"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/medicines", h.AddMedicine)
	g.GET("/medicines", h.ListMedicines)
	g.GET("/medicines/:id", h.GetMedicine)
	g.PUT("/medicines/:id", h.UpdateMedicine)
	g.DELETE("/medicines/:id", h.DeleteMedicine)
	g.POST("/medicines/:id/dispense", h.DispenseMedicine)

	g.POST("/opticals", h.AddOptical)
	g.GET("/opticals", h.ListOpticals)
	g.GET("/opticals/:id", h.GetOptical)
	g.PUT("/opticals/:id", h.UpdateOptical)
	g.DELETE("/opticals/:id", h.DeleteOptical)
	g.POST("/opticals/:id/dispense", h.DispenseOptical)

	g.GET("/dispenses", h.ListDispenses)
}

type dispenseRequest struct {
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

func (h *Handler) AddMedicine(c echo.Context) error {
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.AddMedicine(c.Request().Context(), &m); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not add medicine", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(m, "medicine added"))
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("medicine not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load medicine", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(m))
}

func (h *Handler) ListMedicines(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListMedicines(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list medicines", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	m.ID = id
	if err := h.svc.UpdateMedicine(c.Request().Context(), &m); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("medicine not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update medicine", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(m, "medicine updated"))
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.DeleteMedicine(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("medicine not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete medicine", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "medicine deleted"))
}

func (h *Handler) DispenseMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	record, err := h.svc.DispenseMedicine(c.Request().Context(), id, req.PatientID, req.Quantity)
	if err != nil {
		metrics.RecordDispense(KindMedicine, "failure")
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, envelope.Fail("medicine not found"))
		case errors.Is(err, ErrInsufficientStock):
			return c.JSON(http.StatusConflict, envelope.Fail("insufficient stock"))
		default:
			return c.JSON(http.StatusBadRequest, envelope.FailErr("could not dispense medicine", err))
		}
	}
	metrics.RecordDispense(KindMedicine, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(record, "medicine dispensed"))
}

func (h *Handler) AddOptical(c echo.Context) error {
	var o OpticalItem
	if err := c.Bind(&o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.AddOptical(c.Request().Context(), &o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not add optical item", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(o, "optical item added"))
}

func (h *Handler) GetOptical(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	o, err := h.svc.GetOptical(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("optical item not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load optical item", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(o))
}

func (h *Handler) ListOpticals(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOpticals(c.Request().Context(),
		c.QueryParam("kind"), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list optical items", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) UpdateOptical(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var o OpticalItem
	if err := c.Bind(&o); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	o.ID = id
	if err := h.svc.UpdateOptical(c.Request().Context(), &o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("optical item not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update optical item", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(o, "optical item updated"))
}

func (h *Handler) DeleteOptical(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.DeleteOptical(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("optical item not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete optical item", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "optical item deleted"))
}

func (h *Handler) DispenseOptical(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	record, err := h.svc.DispenseOptical(c.Request().Context(), id, req.PatientID, req.Quantity)
	if err != nil {
		metrics.RecordDispense(KindOptical, "failure")
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, envelope.Fail("optical item not found"))
		case errors.Is(err, ErrInsufficientStock):
			return c.JSON(http.StatusConflict, envelope.Fail("insufficient stock"))
		default:
			return c.JSON(http.StatusBadRequest, envelope.FailErr("could not dispense optical item", err))
		}
	}
	metrics.RecordDispense(KindOptical, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(record, "optical item dispensed"))
}

func (h *Handler) ListDispenses(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDispenses(c.Request().Context(), c.QueryParam("kind"), pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list dispense records", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}
