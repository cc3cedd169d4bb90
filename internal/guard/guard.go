// Package guard decides what a navigation to a protected route renders.
package guard

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
)

// Login routes unauthenticated users are sent to
const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin"
)

// State is the slice of the session a guard looks at
type State struct {
	Loading       bool
	Authenticated bool
	Role          models.Role
	IsVerified    *bool
}

// StateOf reads the guard state from a session store
func StateOf(s *session.Store) State {
	st := State{
		Loading:       s.Loading(),
		Authenticated: s.IsAuthenticated(),
	}
	if u := s.User(); u != nil {
		st.Role = u.Role
		st.IsVerified = u.IsVerified
	}
	return st
}

// Requirement is what a route demands. A zero Role admits any signed-in user.
type Requirement struct {
	Role                    models.Role
	RequireVerifiedLandlord bool
}

// Outcome is the kind of decision
type Outcome int

const (
	Allow Outcome = iota
	Loading
	Redirect
	AccessDenied
	AwaitingVerification
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case AccessDenied:
		return "access_denied"
	case AwaitingVerification:
		return "awaiting_verification"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision is the result of Evaluate. To is set for redirects and HomePath
// for access denied.
type Decision struct {
	Outcome  Outcome
	To       string
	HomePath string
}

// Evaluate is a pure function of the session state and route requirement
func Evaluate(st State, req Requirement) Decision {
	if st.Loading {
		return Decision{Outcome: Loading}
	}

	if !st.Authenticated {
		to := LoginPath
		if req.Role == models.RoleAdmin {
			to = AdminLoginPath
		}
		return Decision{Outcome: Redirect, To: to}
	}

	if req.Role != "" && st.Role != req.Role {
		return Decision{Outcome: AccessDenied, HomePath: st.Role.HomePath()}
	}

	if req.RequireVerifiedLandlord && st.Role == models.RoleLandlord &&
		st.IsVerified != nil && !*st.IsVerified {
		return Decision{Outcome: AwaitingVerification}
	}

	return Decision{Outcome: Allow}
}

// Location is the redirect target carrying the attempted route as ?from=
func (d Decision) Location(from string) string {
	if from == "" || from == d.To {
		return d.To
	}
	return d.To + "?from=" + url.QueryEscape(from)
}

// Errors returned by Check
var (
	ErrNotSignedIn          = errors.New("you need to sign in first")
	ErrAccessDenied         = errors.New("access denied")
	ErrAwaitingVerification = errors.New("your landlord account is awaiting verification")
	ErrSessionLoading       = errors.New("session is still loading")
)

// DeniedError carries the decision that blocked a command
type DeniedError struct {
	Decision Decision
	err      error
}

func (e *DeniedError) Error() string {
	switch e.Decision.Outcome {
	case Redirect:
		return fmt.Sprintf("%v (run `homerent login`)", e.err)
	case AccessDenied:
		return fmt.Sprintf("%v: this command is for another role; your home is %s", e.err, e.Decision.HomePath)
	}
	return e.err.Error()
}

func (e *DeniedError) Unwrap() error { return e.err }

// Check evaluates the requirement and returns nil when access is allowed
func Check(st State, req Requirement) error {
	d := Evaluate(st, req)
	switch d.Outcome {
	case Allow:
		return nil
	case Loading:
		return &DeniedError{Decision: d, err: ErrSessionLoading}
	case Redirect:
		return &DeniedError{Decision: d, err: ErrNotSignedIn}
	case AccessDenied:
		return &DeniedError{Decision: d, err: ErrAccessDenied}
	default:
		return &DeniedError{Decision: d, err: ErrAwaitingVerification}
	}
}
