package types

// SessionState is the per-session login status. Identity is the email the
// session signed in with and is empty whenever Authenticated is false.
type SessionState struct {
	Authenticated bool
	Identity      string
}

// LoggedOut is the state every new session starts in.
func LoggedOut() SessionState {
	return SessionState{}
}

// LoggedInAs returns an authenticated state for identity.
func LoggedInAs(identity string) SessionState {
	return SessionState{Authenticated: true, Identity: identity}
}

func (s SessionState) Valid() bool {
	return s.Authenticated == (s.Identity != "")
}
