package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/llm-control-plane/dashboard/internal/layout"
	"go.uber.org/zap"
)

// ShellComposer builds the layout shell for a request
type ShellComposer interface {
	Compose(ctx context.Context, r *http.Request) (*layout.Shell, error)
}

// ErrorResponder writes the response for a request that cannot continue
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// ShellMiddleware loads the layout shell once per request and gates
// admin-only sections on it
type ShellMiddleware struct {
	composer ShellComposer
	onError  ErrorResponder
	logger   *zap.Logger
}

// NewShellMiddleware creates a new ShellMiddleware
func NewShellMiddleware(composer ShellComposer, onError ErrorResponder, logger *zap.Logger) *ShellMiddleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	return &ShellMiddleware{
		composer: composer,
		onError:  onError,
		logger:   logger,
	}
}

// LoadShell composes the shell and stores it in the request context
func (m *ShellMiddleware) LoadShell(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shell, err := m.composer.Compose(ctx, r)
		if err != nil {
			m.logger.Error("failed to compose layout",
				zap.String("request_id", chimw.GetReqID(ctx)),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.onError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithShell(ctx, shell)))
	})
}

// RequireAdmin only lets administrators through; everyone else gets forbidden.
// It must run after LoadShell.
func (m *ShellMiddleware) RequireAdmin(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shell := ShellFromContext(r.Context())
			if shell == nil || !shell.IsAdmin {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("path", r.URL.Path))
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
