package session

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"

	"agrigate/internal/config"
	"agrigate/internal/types"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
)

const sessionKey = "session"

var ErrInvalidState = errors.New("session: identity must be set iff authenticated")

func init() {
	gob.Register(types.SessionState{})
}

// Manager keeps one SessionState per browser session. Each cookie owns its
// own copy, so concurrent users never see each other's login status.
type Manager struct {
	*scs.SessionManager
}

func NewManager(settings *config.SettingsType) *Manager {
	return &Manager{SessionManager: newSessionManager(settings)}
}

func newSessionManager(settings *config.SettingsType) *scs.SessionManager {
	manager := scs.New()
	manager.Store = memstore.New()
	manager.Lifetime = settings.Duration(config.SESSION_TTL)
	manager.Cookie.Name = "agri_session"
	manager.Cookie.Path = "/"
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = settings.IsTrue(config.COOKIE_SECURE) || settings.IsTrue(config.TLS_ENABLED)
	return manager
}

// State returns the session's login status, or the logged out defaults for a
// session that has never been written.
func (m *Manager) State(ctx context.Context) types.SessionState {
	st, ok := m.Get(ctx, sessionKey).(types.SessionState)
	if !ok || !st.Valid() {
		return types.LoggedOut()
	}
	return st
}

// SetState stores st. The token is renewed whenever the authenticated flag
// flips.
func (m *Manager) SetState(ctx context.Context, st types.SessionState) error {
	if !st.Valid() {
		return ErrInvalidState
	}
	if m.State(ctx).Authenticated != st.Authenticated {
		if err := m.RenewToken(ctx); err != nil {
			return err
		}
	}
	m.Put(ctx, sessionKey, st)
	return nil
}

// Reset drops everything held for the session.
func (m *Manager) Reset(ctx context.Context) error {
	return m.Destroy(ctx)
}

type sessionContextKey struct{}

func StateFromContext(ctx context.Context) (types.SessionState, bool) {
	st, ok := ctx.Value(sessionContextKey{}).(types.SessionState)
	if !ok || !st.Authenticated {
		return types.SessionState{}, false
	}
	return st, true
}

// SessionMiddleware sends unauthenticated requests back to the gate.
func (m *Manager) SessionMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		req, w := humachi.Unwrap(ctx)

		st := m.State(req.Context())
		if !st.Authenticated {
			http.Redirect(w, req, "/", http.StatusSeeOther)
			return
		}

		next(huma.WithValue(ctx, sessionContextKey{}, st))
	}
}
