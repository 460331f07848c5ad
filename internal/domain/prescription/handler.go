package prescription

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

// Module is the permission flag guarding prescription operations.
const Module = "prescriptions"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/prescriptions", h.Issue)
	g.GET("/prescriptions", h.List)
	g.GET("/prescriptions/:id", h.Get)
	g.GET("/patients/:id/prescriptions", h.ListByPatient)
	g.PUT("/prescriptions/:id", h.Update)
	g.DELETE("/prescriptions/:id", h.Delete)
}

func (h *Handler) Issue(c echo.Context) error {
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.Issue(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not issue prescription", err))
	}
	metrics.RecordReceiptIssued()
	return c.JSON(http.StatusCreated, envelope.OKMessage(p, "prescription issued"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("prescription not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load prescription", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"complaint", "diagnosis", "serial"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list prescriptions", err))
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
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list prescriptions", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var p Prescription
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("prescription not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update prescription", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(p, "prescription updated"))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("prescription not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete prescription", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "prescription deleted"))
}
