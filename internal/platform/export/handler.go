package export

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/internal/domain/inventory"
	"github.com/opticare/opticare/internal/domain/patient"
	"github.com/opticare/opticare/internal/domain/prescription"
	"github.com/opticare/opticare/internal/platform/analytics"
	"github.com/opticare/opticare/internal/platform/auth"
	"github.com/opticare/opticare/internal/platform/metrics"
	"github.com/opticare/opticare/pkg/envelope"
)

// Module is the permission flag guarding exports.
const Module = "export"

// snapshotLimit caps entity exports; clinics this size never approach it.
const snapshotLimit = 100000

type Handler struct {
	exporter      *Exporter
	agg           *analytics.Aggregator
	patients      *patient.Service
	prescriptions *prescription.Service
	inventory     *inventory.Service
}

func NewHandler(exporter *Exporter, agg *analytics.Aggregator, patients *patient.Service, prescriptions *prescription.Service, inv *inventory.Service) *Handler {
	return &Handler{exporter: exporter, agg: agg, patients: patients, prescriptions: prescriptions, inventory: inv}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireModule(Module))
	g.POST("/export/analytics", h.ExportAnalytics)
	g.POST("/export/patients", h.ExportPatients)
	g.POST("/export/prescriptions", h.ExportPrescriptions)
	g.POST("/export/medicines", h.ExportMedicines)
	g.POST("/export/opticals", h.ExportOpticals)
}

type exportResult struct {
	Path string `json:"path"`
}

func (h *Handler) ExportAnalytics(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	from, to, err := analytics.ParseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid date range", err))
	}
	report, err := h.agg.Aggregate(c.Request().Context(), from, to)
	if err != nil {
		metrics.RecordExport(format, "failure")
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not aggregate analytics", err))
	}
	path, err := h.exporter.ExportReport(report, format)
	if err != nil {
		metrics.RecordExport(format, "failure")
		if errors.Is(err, ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, envelope.Fail("unsupported export format"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not write export", err))
	}
	metrics.RecordExport(format, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(exportResult{Path: path}, "analytics exported"))
}

func (h *Handler) ExportPatients(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	from, to, err := analytics.ParseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid date range", err))
	}
	patients, err := h.patients.ListByDateRange(c.Request().Context(), from, to)
	if err != nil {
		metrics.RecordExport(format, "failure")
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load patients", err))
	}
	path, err := h.exporter.ExportPatients(patients, format)
	if err != nil {
		metrics.RecordExport(format, "failure")
		if errors.Is(err, ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, envelope.Fail("unsupported export format"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not write export", err))
	}
	metrics.RecordExport(format, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(exportResult{Path: path}, "patients exported"))
}

func (h *Handler) ExportPrescriptions(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	from, to, err := analytics.ParseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, envelope.FailErr("invalid date range", err))
	}
	items, err := h.prescriptions.ListByDateRange(c.Request().Context(), from, to)
	if err != nil {
		metrics.RecordExport(format, "failure")
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load prescriptions", err))
	}
	path, err := h.exporter.ExportPrescriptions(items, format)
	if err != nil {
		metrics.RecordExport(format, "failure")
		if errors.Is(err, ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, envelope.Fail("unsupported export format"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not write export", err))
	}
	metrics.RecordExport(format, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(exportResult{Path: path}, "prescriptions exported"))
}

func (h *Handler) ExportMedicines(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	items, _, err := h.inventory.ListMedicines(c.Request().Context(), "", snapshotLimit, 0)
	if err != nil {
		metrics.RecordExport(format, "failure")
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load medicines", err))
	}
	path, err := h.exporter.ExportMedicines(items, format)
	if err != nil {
		metrics.RecordExport(format, "failure")
		if errors.Is(err, ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, envelope.Fail("unsupported export format"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not write export", err))
	}
	metrics.RecordExport(format, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(exportResult{Path: path}, "medicines exported"))
}

func (h *Handler) ExportOpticals(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = FormatCSV
	}
	items, _, err := h.inventory.ListOpticals(c.Request().Context(), "", "", snapshotLimit, 0)
	if err != nil {
		metrics.RecordExport(format, "failure")
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not load optical items", err))
	}
	path, err := h.exporter.ExportOpticals(items, format)
	if err != nil {
		metrics.RecordExport(format, "failure")
		if errors.Is(err, ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, envelope.Fail("unsupported export format"))
		}
		return c.JSON(http.StatusInternalServerError, envelope.FailErr("could not write export", err))
	}
	metrics.RecordExport(format, "success")
	return c.JSON(http.StatusOK, envelope.OKMessage(exportResult{Path: path}, "optical items exported"))
}
