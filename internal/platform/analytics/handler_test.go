package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticare/opticare/pkg/envelope"
)

func TestHandler_Report(t *testing.T) {
	agg := NewAggregator(&mockSource{}, zerolog.Nop())
	h := NewHandler(agg, nil, zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?from=2026-03-01&to=2026-03-03", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Report(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp envelope.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Len(t, report.TimeSeries, 3)
}

func TestHandler_Report_InvalidRange(t *testing.T) {
	agg := NewAggregator(&mockSource{}, zerolog.Nop())
	h := NewHandler(agg, nil, zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?from=2026-03-05&to=2026-03-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Report(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Report_BadDate(t *testing.T) {
	agg := NewAggregator(&mockSource{}, zerolog.Nop())
	h := NewHandler(agg, nil, zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Report(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
