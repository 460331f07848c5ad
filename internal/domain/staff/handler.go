package staff

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/pkg/envelope"
	"github.com/opticare/opticare/pkg/pagination"
)

// Module is the permission flag guarding staff administration.
const Module = "staff"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Login stays outside the permission guard; the auth middleware lets it
	// through unauthenticated.
	api.POST("/login", h.Login)

	g := api.Group("", auth.RequireModule(Module))
	g.POST("/staff", h.Create)
	g.GET("/staff", h.List)
	g.GET("/staff/:id", h.Get)
	g.PUT("/staff/:id", h.Update)
	g.DELETE("/staff/:id", h.Delete)
}

type createRequest struct {
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Password    string          `json:"password"`
	Admin       bool            `json:"admin"`
	Permissions map[string]bool `json:"permissions"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Staff *Staff `json:"staff"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	st, token, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, envelope.Fail("invalid username or password"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not log in", err))
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(loginResponse{Token: token, Staff: st}, "logged in"))
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	st := &Staff{
		Username:    req.Username,
		Name:        req.Name,
		Admin:       req.Admin,
		Permissions: req.Permissions,
	}
	if err := h.svc.Create(c.Request().Context(), st, req.Password); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return c.JSON(http.StatusConflict, envelope.Fail("username already taken"))
		}
		return c.JSON(http.StatusBadRequest, envelope.FailErr("could not create staff account", err))
	}
	return c.JSON(http.StatusCreated, envelope.OKMessage(st, "staff account created"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	st, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope.Fail("staff not found"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load staff account", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(st))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not list staff accounts", err))
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewPage(items, total, pg.Limit, pg.Offset)))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid request body", err))
	}
	st := &Staff{
		ID:          id,
		Name:        req.Name,
		Admin:       req.Admin,
		Permissions: req.Permissions,
	}
	if err := h.svc.Update(c.Request().Context(), st, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, envelope.Fail("staff not found"))
		case errors.Is(err, ErrLastAdmin):
			return c.JSON(http.StatusConflict, envelope.Fail("cannot remove the last administrator"))
		default:
			return c.JSON(http.StatusBadRequest, envelope.FailErr("could not update staff account", err))
		}
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(st, "staff account updated"))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.Fail("invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, envelope.Fail("staff not found"))
		case errors.Is(err, ErrLastAdmin):
			return c.JSON(http.StatusConflict, envelope.Fail("cannot remove the last administrator"))
		default:
			return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not delete staff account", err))
		}
	}
	return c.JSON(http.StatusOK, envelope.OKMessage(nil, "staff account deleted"))
}
