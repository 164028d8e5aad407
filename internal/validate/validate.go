// Package validate checks login form input. It is a demo gate only: an
// accepted result means the input is well formed, not that anyone proved who
// they are.
package validate

import (
	"fmt"
	"strings"
)

type Field string

const (
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
)

const (
	MsgEmailMissing    = "Please enter your email address."
	MsgEmailInvalid    = "Email looks invalid."
	MsgPasswordMissing = "Please enter your password."

	FieldMsgEmailRequired    = "Email is required."
	FieldMsgEmailInvalid     = "Invalid email format."
	FieldMsgPasswordRequired = "Password is required."
)

// MatchMode selects how the domain marker is checked against an email.
type MatchMode int

const (
	MatchSuffix MatchMode = iota
	MatchContains
)

const DefaultMarker = "@gmail.com"

func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "suffix":
		return MatchSuffix, nil
	case "contains":
		return MatchContains, nil
	default:
		return MatchSuffix, fmt.Errorf("unknown email policy %q", s)
	}
}

func (m MatchMode) String() string {
	if m == MatchContains {
		return "contains"
	}
	return "suffix"
}

// Policy is the email acceptance rule. The zero value requires the default
// marker as a suffix.
type Policy struct {
	Mode   MatchMode
	Marker string
}

func NewPolicy(mode MatchMode, marker string) Policy {
	return Policy{Mode: mode, Marker: strings.TrimSpace(marker)}
}

func (p Policy) marker() string {
	if p.Marker == "" {
		return DefaultMarker
	}
	return p.Marker
}

// EmailAllowed reports whether a non-empty email carries the domain marker.
func (p Policy) EmailAllowed(email string) bool {
	if email == "" {
		return false
	}
	if p.Mode == MatchContains {
		return strings.Contains(email, p.marker())
	}
	return strings.HasSuffix(email, p.marker())
}

// Result is the outcome of one validation. Errors keeps the order the rules
// fired in; FieldErrors holds at most one message per field.
type Result struct {
	Accepted    bool             `json:"accepted"`
	Errors      []string         `json:"errors"`
	FieldErrors map[Field]string `json:"fieldErrors"`
}

func (r Result) FieldError(f Field) string {
	return r.FieldErrors[f]
}

// Validate applies every rule and collects all failures.
func (p Policy) Validate(email, password string) Result {
	res := Result{
		Errors:      []string{},
		FieldErrors: map[Field]string{},
	}

	switch {
	case email == "":
		res.Errors = append(res.Errors, MsgEmailMissing)
		res.FieldErrors[FieldEmail] = FieldMsgEmailRequired
	case !p.EmailAllowed(email):
		res.Errors = append(res.Errors, MsgEmailInvalid)
		res.FieldErrors[FieldEmail] = FieldMsgEmailInvalid
	}

	if password == "" {
		res.Errors = append(res.Errors, MsgPasswordMissing)
		res.FieldErrors[FieldPassword] = FieldMsgPasswordRequired
	}

	res.Accepted = len(res.Errors) == 0
	return res
}
