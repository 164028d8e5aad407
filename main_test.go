package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agrigate/internal/validate"
)

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIValidateRejects(t *testing.T) {
	handler := getAgriGateRouter(newTestApp(t))
	rec := postJSON(t, handler, "/api/validate", `{"email":"","password":""}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var res validate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Accepted {
		t.Fatalf("expected rejection")
	}
	want := []string{validate.MsgEmailMissing, validate.MsgPasswordMissing}
	if len(res.Errors) != len(want) || res.Errors[0] != want[0] || res.Errors[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, res.Errors)
	}
	if res.FieldErrors[validate.FieldPassword] != validate.FieldMsgPasswordRequired {
		t.Fatalf("expected password field error, got %v", res.FieldErrors)
	}
}

func TestAPIValidateAcceptsWithoutSigningIn(t *testing.T) {
	handler := getAgriGateRouter(newTestApp(t))
	rec := postJSON(t, handler, "/api/validate", `{"email":" user@gmail.com ","password":"secret"}`)

	var res validate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("expected acceptance, got %v", res.Errors)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "agri_session" {
			t.Fatalf("expected validation to leave the session untouched")
		}
	}
}

func TestAPISessionLoggedOut(t *testing.T) {
	handler := getAgriGateRouter(newTestApp(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/api/session", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"authenticated":false`) || !strings.Contains(body, `"state":"LOGGED_OUT"`) {
		t.Fatalf("expected logged out session, got %s", body)
	}
}
