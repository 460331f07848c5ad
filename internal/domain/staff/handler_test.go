package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func TestHandler_Login(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	st := &Staff{Username: "reception", Name: "Front Desk"}
	if err := svc.Create(nil, st, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	body := `{"username":"reception","password":"s3cret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
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

func TestHandler_Login_BadCredentials(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := `{"username":"ghost","password":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_Delete_LastAdmin(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	admin := &Staff{Username: "admin", Name: "Admin", Admin: true}
	if err := svc.Create(nil, admin, "s3cret!"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(admin.ID.String())

	if err := h.Delete(c); err != nil {
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
