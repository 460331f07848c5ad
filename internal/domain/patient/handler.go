package patient

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

// Module is the permission flag guarding patient operations.
const Module = "patients"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/patients", h.Register)
	g.GET("/patients", h.List)
	g.GET("/patients/:id", h.Get)
	g.GET("/patients/number/:number", h.GetByNumber)
	g.PUT("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Delete)
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not register patient", err))
	}
	metrics.RecordPatientRegistered()
	return c.JSON(http.StatusCreated, envelope.OKMessage(p, "patient registered"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("patient not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load patient", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) GetByNumber(c echo.Context) error {
	p, err := h.svc.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("patient not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load patient", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"name", "phone", "number"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	patients, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list patients", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(patients, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("patient not found"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update patient", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(p, "patient updated"))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("patient not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete patient", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "patient deleted"))
}
