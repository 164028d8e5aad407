package main

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"agrigate/internal/gate"
	"agrigate/internal/types"
)

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

func extractCredentials(r *http.Request) (string, string, error) {
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	return email, password, nil
}

// handleGate runs a render cycle with no user action.
func (a *app) handleGate(w http.ResponseWriter, r *http.Request) {
	out := a.gate.Step(a.sessions.State(r.Context()), gate.None())
	a.serveOutcome(w, out, nil)
}

func (a *app) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	email, password, err := extractCredentials(r)
	if err != nil {
		a.serveLoginMessage(w, "Invalid form submission.")
		return
	}

	out := a.gate.Step(a.sessions.State(r.Context()), gate.Submit(email, password))
	if out.Result != nil {
		a.metrics.RecordLogin(out.Result.Accepted)
	}

	if !out.Changed {
		if out.View.IsLogin() {
			log.Printf("login rejected: errors=%d remote=%s", len(out.View.Login.Errors), r.RemoteAddr)
			a.serveOutcome(w, out, nil)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := a.sessions.SetState(r.Context(), out.Session); err != nil {
		log.Printf("session update failed for %s: %v", email, err)
		a.serveLoginMessage(w, "Login failed.")
		return
	}
	log.Printf("login accepted: identity=%s remote=%s", out.Session.Identity, r.RemoteAddr)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	out := a.gate.Step(a.sessions.State(r.Context()), gate.Logout())
	if out.Changed {
		if err := a.sessions.Reset(r.Context()); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
		a.metrics.RecordLogout()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *app) serveLoginMessage(w http.ResponseWriter, message string) {
	out := a.gate.Step(types.LoggedOut(), gate.None())
	out.View.Login.Errors = []string{message}
	a.serveOutcome(w, out, nil)
}

func (a *app) serveOutcome(w http.ResponseWriter, out gate.Outcome, form *cropView) {
	page := pageData{
		Title:      a.title,
		Background: a.backdrop.URL(),
		View:       out.View,
	}
	if !out.View.IsLogin() {
		if form == nil {
			form = newCropView(a.now())
		}
		page.Crop = form
	}
	renderPage(w, http.StatusOK, page)
}

func renderPage(w http.ResponseWriter, status int, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		log.Printf("render page: %v", err)
		http.Error(w, "Page unavailable.", http.StatusInternalServerError)
		return
	}
	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("render page: %v", err)
	}
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}
