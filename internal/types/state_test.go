package types

import "testing"

func TestSessionStateValid(t *testing.T) {
	tests := []struct {
		name  string
		state SessionState
		want  bool
	}{
		{name: "logged-out", state: LoggedOut(), want: true},
		{name: "logged-in", state: LoggedInAs("user@gmail.com"), want: true},
		{name: "authenticated-without-identity", state: SessionState{Authenticated: true}, want: false},
		{name: "identity-without-authentication", state: SessionState{Identity: "user@gmail.com"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Valid(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
