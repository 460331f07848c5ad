package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	patientsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "patients_registered_total",
			Help: "Total number of patients registered",
		},
	)

	receiptsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receipts_issued_total",
			Help: "Total number of prescription receipts issued",
		},
	)

	dispensesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispenses_total",
			Help: "Total number of inventory dispense operations",
		},
		[]string{"kind", "outcome"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of export jobs",
		},
		[]string{"format", "outcome"},
	)
)

// RecordPatientRegistered increments the registration counter.
func RecordPatientRegistered() { patientsRegistered.Inc() }

// RecordReceiptIssued increments the receipt counter.
func RecordReceiptIssued() { receiptsIssued.Inc() }

// RecordDispense counts a dispense attempt by item kind and outcome
// ("ok", "insufficient_stock", "error").
func RecordDispense(kind, outcome string) {
	dispensesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordExport counts an export job by format and outcome.
func RecordExport(format, outcome string) {
	exportsTotal.WithLabelValues(format, outcome).Inc()
}

// HTTPMetrics observes request counts and latencies per route.
func HTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
