// Package gate decides which surface a session sees. Step is pure: it takes
// the current session state and one user action and returns the next state
// together with the view-model to render.
package gate

import (
	"agrigate/internal/types"
	"agrigate/internal/validate"
)

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "LOGGED_IN"
	}
	return "LOGGED_OUT"
}

func StateOf(sess types.SessionState) State {
	if sess.Authenticated {
		return LoggedIn
	}
	return LoggedOut
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSubmit
	ActionLogout
)

type Action struct {
	Kind     ActionKind
	Email    string
	Password string
}

func None() Action {
	return Action{Kind: ActionNone}
}

func Submit(email, password string) Action {
	return Action{Kind: ActionSubmit, Email: email, Password: password}
}

func Logout() Action {
	return Action{Kind: ActionLogout}
}

type Surface int

const (
	SurfaceLogin Surface = iota
	SurfaceProtected
)

// LoginView decorates the login card. Errors is empty on a clean render.
type LoginView struct {
	Email       string
	Errors      []string
	FieldErrors map[validate.Field]string
}

func (v LoginView) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v LoginView) EmailError() string {
	return v.FieldErrors[validate.FieldEmail]
}

func (v LoginView) PasswordError() string {
	return v.FieldErrors[validate.FieldPassword]
}

type ProtectedView struct {
	Identity string
	Chrome   bool
}

type View struct {
	Surface   Surface
	Login     LoginView
	Protected ProtectedView
}

func (v View) IsLogin() bool {
	return v.Surface == SurfaceLogin
}

// Outcome is the result of one render cycle. Rerender is set when the
// session changed and the caller should start a fresh cycle rather than draw
// View directly.
type Outcome struct {
	Session  types.SessionState
	State    State
	Changed  bool
	Rerender bool
	Result   *validate.Result
	View     View
}

type Controller struct {
	policy          validate.Policy
	decoratedChrome bool
}

func NewController(policy validate.Policy, decoratedChrome bool) *Controller {
	return &Controller{policy: policy, decoratedChrome: decoratedChrome}
}

func (c *Controller) Policy() validate.Policy {
	return c.policy
}

func (c *Controller) Step(sess types.SessionState, action Action) Outcome {
	if !sess.Valid() {
		sess = types.LoggedOut()
	}

	switch StateOf(sess) {
	case LoggedOut:
		if action.Kind != ActionSubmit {
			return c.render(sess)
		}
		res := c.policy.Validate(action.Email, action.Password)
		if !res.Accepted {
			out := c.render(sess)
			out.Result = &res
			out.View.Login = LoginView{
				Email:       action.Email,
				Errors:      res.Errors,
				FieldErrors: res.FieldErrors,
			}
			return out
		}
		out := c.render(types.LoggedInAs(action.Email))
		out.Result = &res
		out.Changed = true
		out.Rerender = true
		return out

	default:
		if action.Kind != ActionLogout {
			return c.render(sess)
		}
		out := c.render(types.LoggedOut())
		out.Changed = true
		out.Rerender = true
		return out
	}
}

func (c *Controller) render(sess types.SessionState) Outcome {
	out := Outcome{Session: sess, State: StateOf(sess)}
	if out.State == LoggedIn {
		out.View = View{
			Surface: SurfaceProtected,
			Protected: ProtectedView{
				Identity: sess.Identity,
				Chrome:   c.decoratedChrome,
			},
		}
		return out
	}
	out.View = View{Surface: SurfaceLogin}
	return out
}
