package lab

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

// Module is the permission flag guarding lab operations.
const Module = "labs"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/labs", h.Add)
	g.GET("/labs", h.List)
	g.GET("/labs/:id", h.Get)
	g.GET("/patients/:id/labs", h.ListByPatient)
	g.PUT("/labs/:id", h.Update)
	g.DELETE("/labs/:id", h.Delete)
}

func (h *Handler) Add(c echo.Context) error {
	var r Record
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.Add(c.Request().Context(), &r); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not add lab record", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(r, "lab record added"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("lab record not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load lab record", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(r))
}

// List returns records in a [from, to] date window, defaulting to the last
// 30 days.
func (h *Handler) List(c echo.Context) error {
	const layout = "2006-01-02"
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(layout, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Fail("invalid from date"))
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(layout, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, envelope.Fail("invalid to date"))
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return c.JSON(http.StatusBadRequest, envelope.Fail("from must precede to"))
	}
	items, err := h.svc.ListByDateRange(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list lab records", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid patient id"))
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list lab records", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var r Record
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	r.ID = id
	if err := h.svc.Update(c.Request().Context(), &r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("lab record not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update lab record", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(r, "lab record updated"))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("lab record not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete lab record", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "lab record deleted"))
}
