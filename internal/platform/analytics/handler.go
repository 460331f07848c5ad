package analytics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/internal/platform/cache"
	"github.com/opticare/opticare/pkg/envelope"
)

// Module is the permission flag guarding the dashboard.
const Module = "analytics"

const cacheTTL = 5 * time.Minute

type Handler struct {
	agg   *Aggregator
	cache *cache.Cache
	log   zerolog.Logger
}

func NewHandler(agg *Aggregator, c *cache.Cache, log zerolog.Logger) *Handler {
	return &Handler{agg: agg, cache: c, log: log}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.GET("/analytics", h.Report)
}

// ParseRange reads from/to query parameters as calendar dates. The range is
// half-open: [from, to+1d). Defaults to the last 30 days.
func ParseRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from, to := now.AddDate(0, 0, -29), now.AddDate(0, 0, 1)
	if v := c.QueryParam("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", v)
		}
		from = parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", v)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must precede to")
	}
	return from, to, nil
}

func (h *Handler) Report(c echo.Context) error {
	from, to, err := ParseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid date range", err))
	}

	key := fmt.Sprintf("analytics:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached Report
	if err := h.cache.Get(c.Request().Context(), key, &cached); err == nil {
		return c.JSON(http.StatusOK, envelope.OK(&cached))
	} else if !errors.Is(err, cache.ErrMiss) {
		h.log.Warn().Err(err).Msg("analytics: cache read failed")
	}

	report, err := h.agg.Aggregate(c.Request().Context(), from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not aggregate analytics", err))
	}
	if err := h.cache.Set(c.Request().Context(), key, report, cacheTTL); err != nil {
		h.log.Warn().Err(err).Msg("analytics: cache write failed")
	}
	return c.JSON(http.StatusOK, envelope.OK(report))
}
