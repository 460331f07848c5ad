package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticare/opticare/pkg/envelope"
)

func decodeEnvelope(t *testing.T, body []byte) envelope.Response {
	t.Helper()
	var resp envelope.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp
}

func TestHandler_AddMedicine(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := `{"name":"Timolol","quantity":5,"price":120}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/medicines", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AddMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body.Bytes())
	if !resp.Success {
		t.Errorf("expected success envelope, got %+v", resp)
	}
}

func TestHandler_DispenseMedicine_InsufficientStock(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	m := &Medicine{Name: "Timolol", Quantity: 1, Price: 120}
	if err := svc.AddMedicine(nil, m); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.DispenseMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body.Bytes())
	if resp.Success {
		t.Error("expected failure envelope")
	}
}

func TestHandler_DispenseMedicine_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.DispenseMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_DispenseOptical(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	o := &OpticalItem{Kind: "lens", Brand: "Essilor", Quantity: 4, Price: 900}
	if err := svc.AddOptical(nil, o); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(o.ID.String())

	if err := h.DispenseOptical(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body.Bytes())
	if !resp.Success {
		t.Errorf("expected success, got %+v", resp)
	}
}

func TestHandler_ListDispenses(t *testing.T) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	ctx := context.Background()
	m := &Medicine{Name: "Timolol", Quantity: 5, Price: 120}
	if err := svc.AddMedicine(ctx, m); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DispenseMedicine(ctx, m.ID, nil, 2); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?kind=medicine", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListDispenses(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
