package routeguard

import (
	"fmt"
	"net/http"

	"github.com/upb/llm-control-plane/dashboard/internal/observability"
	"github.com/upb/llm-control-plane/dashboard/internal/session"
	"go.uber.org/zap"
)

// Guard applies a Policy to incoming requests before any route handler runs
type Guard struct {
	policy         *Policy
	reader         session.Reader
	redirectStatus int
	logger         *zap.Logger
}

// NewGuard creates a guard. redirectStatus must be 302, 303 or 307;
// zero selects 307 Temporary Redirect. The login path must be unprotected.
func NewGuard(policy *Policy, reader session.Reader, redirectStatus int, logger *zap.Logger) (*Guard, error) {
	switch redirectStatus {
	case 0:
		redirectStatus = http.StatusTemporaryRedirect
	case http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
	default:
		return nil, fmt.Errorf("unsupported redirect status %d", redirectStatus)
	}
	if err := CheckLoginPath(policy.Matcher(), policy.LoginPath()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		policy:         policy,
		reader:         reader,
		redirectStatus: redirectStatus,
		logger:         logger,
	}, nil
}

// Evaluate extracts the inputs of the policy from r and returns its decision.
// Reader failures are treated as a missing cookie.
func (g *Guard) Evaluate(r *http.Request) Decision {
	decision, _ := g.evaluate(r)
	return decision
}

// evaluate matches the path once and returns the decision together with the
// pattern it was based on. The reader is not consulted for unprotected paths.
func (g *Guard) evaluate(r *http.Request) (Decision, Pattern) {
	pattern, protected := g.policy.Matcher().MatchedPattern(r.URL.Path)
	if !protected {
		return g.policy.DecideMatched(false, false), pattern
	}
	return g.policy.DecideMatched(true, g.cookiePresent(r)), pattern
}

func (g *Guard) cookiePresent(r *http.Request) bool {
	if g.reader == nil {
		return false
	}
	present, err := g.reader.SessionPresent(r)
	if err != nil {
		observability.ForRequest(g.logger, r).Warn("session cookie check failed, treating as absent",
			zap.Error(err))
		return false
	}
	return present
}

// Handler is the middleware entry point
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, pattern := g.evaluate(r)
		if !decision.IsRedirect() {
			next.ServeHTTP(w, r)
			return
		}

		observability.ForRequest(g.logger, r).Info("unauthenticated request to protected route",
			zap.String("pattern", pattern.String()),
			zap.String("redirect", decision.Target))

		http.Redirect(w, r, decision.Target, g.redirectStatus)
	})
}
