package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agrigate/internal/config"
	"agrigate/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(config.NewSettingType(false))
}

func serve(t *testing.T, h http.Handler, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStateDefaultsToLoggedOut(t *testing.T) {
	m := newTestManager(t)
	var got types.SessionState
	h := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = m.State(r.Context())
	}))

	serve(t, h, nil)
	if got != types.LoggedOut() {
		t.Fatalf("expected logged out defaults, got %+v", got)
	}
}

func TestSetStatePersistsAcrossRequests(t *testing.T) {
	m := newTestManager(t)
	login := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.SetState(r.Context(), types.LoggedInAs("user@gmail.com")); err != nil {
			t.Fatalf("unexpected set error: %v", err)
		}
	}))
	rec := serve(t, login, nil)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie to be set")
	}
	if cookies[0].Name != "agri_session" {
		t.Fatalf("expected agri_session cookie, got %q", cookies[0].Name)
	}

	var got types.SessionState
	read := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = m.State(r.Context())
	}))
	serve(t, read, cookies)
	if got != types.LoggedInAs("user@gmail.com") {
		t.Fatalf("expected stored login, got %+v", got)
	}

	var fresh types.SessionState
	other := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fresh = m.State(r.Context())
	}))
	serve(t, other, nil)
	if fresh.Authenticated {
		t.Fatalf("expected a new session to be isolated, got %+v", fresh)
	}
}

func TestSetStateRejectsInvalid(t *testing.T) {
	m := newTestManager(t)
	var err error
	h := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err = m.SetState(r.Context(), types.SessionState{Authenticated: true})
	}))
	serve(t, h, nil)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestResetClearsState(t *testing.T) {
	m := newTestManager(t)
	login := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = m.SetState(r.Context(), types.LoggedInAs("user@gmail.com"))
	}))
	cookies := serve(t, login, nil).Result().Cookies()

	var afterReset types.SessionState
	logout := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.Reset(r.Context()); err != nil {
			t.Fatalf("unexpected reset error: %v", err)
		}
		afterReset = m.State(r.Context())
	}))
	serve(t, logout, cookies)
	if afterReset != types.LoggedOut() {
		t.Fatalf("expected defaults after reset, got %+v", afterReset)
	}

	var got types.SessionState
	read := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = m.State(r.Context())
	}))
	serve(t, read, cookies)
	if got.Authenticated {
		t.Fatalf("expected old cookie to be logged out, got %+v", got)
	}
}

func TestSetStateRenewsTokenOnLogin(t *testing.T) {
	m := newTestManager(t)
	visit := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Put(r.Context(), "seen", true)
	}))
	before := serve(t, visit, nil).Result().Cookies()
	if len(before) == 0 {
		t.Fatalf("expected session cookie on first visit")
	}

	login := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.SetState(r.Context(), types.LoggedInAs("user@gmail.com")); err != nil {
			t.Fatalf("unexpected set error: %v", err)
		}
	}))
	after := serve(t, login, before).Result().Cookies()
	if len(after) == 0 {
		t.Fatalf("expected session cookie after login")
	}
	if after[0].Value == before[0].Value {
		t.Fatalf("expected token to change on login, got %q twice", after[0].Value)
	}

	var stale types.SessionState
	read := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stale = m.State(r.Context())
	}))
	serve(t, read, before)
	if stale.Authenticated {
		t.Fatalf("expected pre-login token to stay logged out, got %+v", stale)
	}
}

func TestCookieSecureFollowsSettings(t *testing.T) {
	t.Setenv(config.COOKIE_SECURE, "true")
	m := NewManager(config.NewSettingType(false))
	if !m.Cookie.Secure {
		t.Fatalf("expected secure cookie")
	}
}

func TestStateFromContext(t *testing.T) {
	if _, ok := StateFromContext(context.Background()); ok {
		t.Fatalf("expected no state in an empty context")
	}
	ctx := context.WithValue(context.Background(), sessionContextKey{}, types.LoggedInAs("user@gmail.com"))
	st, ok := StateFromContext(ctx)
	if !ok || st.Identity != "user@gmail.com" {
		t.Fatalf("expected stored state, got %+v (%v)", st, ok)
	}
}
