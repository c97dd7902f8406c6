package routeguard

import (
	"errors"
	"fmt"
)

// DefaultLoginPath is where unauthenticated visitors of protected routes are sent
const DefaultLoginPath = "/login"

// State is the evaluation state of a single request
type State int

const (
	// Evaluating is the initial state before a decision is made
	Evaluating State = iota
	// Allowed means the request continues to the normal handler unchanged
	Allowed
	// Redirected means the request must be answered with a redirect to the login path
	Redirected
)

// String returns the state name used in logs and CLI output
func (s State) String() string {
	switch s {
	case Evaluating:
		return "evaluating"
	case Allowed:
		return "allow"
	case Redirected:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the terminal outcome for one request
type Decision struct {
	State State
	// Target is the redirect location; empty unless State is Redirected
	Target string
}

// IsRedirect reports whether the decision requires a redirect
func (d Decision) IsRedirect() bool {
	return d.State == Redirected
}

// String renders the decision as "allow" or "redirect /login"
func (d Decision) String() string {
	if d.State == Redirected {
		return d.State.String() + " " + d.Target
	}
	return d.State.String()
}

// Policy decides whether a request may proceed. It holds no per-request state.
type Policy struct {
	matcher   *Matcher
	loginPath string
}

// NewPolicy creates a policy for the given matcher. An empty login path
// falls back to DefaultLoginPath.
func NewPolicy(matcher *Matcher, loginPath string) *Policy {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Policy{
		matcher:   matcher,
		loginPath: loginPath,
	}
}

// ErrLoginPathProtected is returned when the login path is itself protected,
// which would send every visitor without a cookie into a redirect loop
var ErrLoginPathProtected = errors.New("login path is protected")

// CheckLoginPath fails when loginPath falls under one of the matcher's patterns
func CheckLoginPath(matcher *Matcher, loginPath string) error {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if pattern, ok := matcher.MatchedPattern(loginPath); ok {
		return fmt.Errorf("%w: %s matches %s", ErrLoginPathProtected, loginPath, pattern)
	}
	return nil
}

// Matcher returns the matcher the policy classifies paths with
func (p *Policy) Matcher() *Matcher {
	return p.matcher
}

// LoginPath returns the redirect target
func (p *Policy) LoginPath() string {
	return p.loginPath
}

// Decide is a pure function of path membership in the protected set and
// cookie presence.
func (p *Policy) Decide(path string, cookiePresent bool) Decision {
	return p.DecideMatched(p.matcher.IsProtected(path), cookiePresent)
}

// DecideMatched applies the transitions to a path already classified by the
// matcher, so callers that also need the matched pattern classify only once.
func (p *Policy) DecideMatched(protected, cookiePresent bool) Decision {
	if !protected {
		return Decision{State: Allowed}
	}
	if cookiePresent {
		return Decision{State: Allowed}
	}
	return Decision{State: Redirected, Target: p.loginPath}
}
