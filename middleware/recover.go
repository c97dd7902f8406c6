package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/llm-control-plane/dashboard/internal/observability"
	"go.uber.org/zap"
)

// ErrorBoundary recovers panics from downstream handlers, logs them and
// hands the request to fallback. http.ErrAbortHandler is re-raised so the
// server can abort the connection.
func ErrorBoundary(logger *zap.Logger, fallback ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				observability.ForRequest(logger, r).Error("panic recovered",
					zap.String("method", r.Method),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))

				// Too late to replace a response that has started
				if ww.Status() != 0 {
					return
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				if fallback == nil {
					http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				fallback(ww, r, err)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
