// Package guard decides whether a route transition may proceed given the
// facts currently held by the session. Decide performs no I/O.
package guard

// SessionFacts are the derived session values the guard consults.
type SessionFacts interface {
	IsAuthenticated() bool
	ForcePasswordChange() bool
}

// Outcome is one of the four mutually exclusive guard results.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
	RedirectPasswordChange
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case RedirectPasswordChange:
		return "redirect-password-change"
	}
	return "unknown"
}

// Decision is the result of evaluating a transition.
type Decision struct {
	Outcome  Outcome
	Redirect string // target path, empty when allowed
}

// Allowed reports whether the transition may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Decide evaluates the rules in order: the auth gate, then guest-only routes,
// then the forced password change. The forced change is checked last so that
// such a user can neither reach a guest route nor skip the auth gate.
func Decide(target Route, facts SessionFacts) Decision {
	authenticated := facts.IsAuthenticated()

	if target.RequiresAuth && !authenticated {
		return Decision{Outcome: RedirectLogin, Redirect: PathLogin}
	}
	if authenticated && target.Guest {
		return Decision{Outcome: RedirectHome, Redirect: PathHome}
	}
	if authenticated && facts.ForcePasswordChange() && target.Name != RouteForcePasswordChange {
		return Decision{Outcome: RedirectPasswordChange, Redirect: PathForcePasswordChange}
	}
	return Decision{Outcome: Allow}
}
