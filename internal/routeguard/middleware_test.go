package routeguard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-control-plane/dashboard/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestGuard(t *testing.T, reader session.Reader, status int) *Guard {
	t.Helper()
	guard, err := NewGuard(newDashboardPolicy(), reader, status, zap.NewNop())
	require.NoError(t, err)
	return guard
}

func TestGuardHandler(t *testing.T) {
	reader := session.NewCookieReader("session")

	tests := []struct {
		name         string
		path         string
		cookieHeader string
		wantStatus   int
		wantNext     bool
	}{
		{name: "root without cookie", path: "/", wantStatus: http.StatusOK, wantNext: true},
		{name: "dashboard without cookie", path: "/dashboard", wantStatus: http.StatusTemporaryRedirect},
		{name: "billing with session cookie", path: "/dashboard/billing", cookieHeader: "session=abc.def.ghi", wantStatus: http.StatusOK, wantNext: true},
		{name: "login without cookie", path: "/login", wantStatus: http.StatusOK, wantNext: true},
		{name: "malformed cookie header", path: "/dashboard", cookieHeader: `session="unterminated`, wantStatus: http.StatusTemporaryRedirect},
		{name: "cookie without value", path: "/dashboard", cookieHeader: "session", wantStatus: http.StatusTemporaryRedirect},
		{name: "other cookie only", path: "/dashboard/settings", cookieHeader: "theme=dark", wantStatus: http.StatusTemporaryRedirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookieHeader != "" {
				req.Header.Set("Cookie", tt.cookieHeader)
			}
			w := httptest.NewRecorder()

			newTestGuard(t, reader, 0).Handler(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantNext, called)
			if !tt.wantNext {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			}
		})
	}
}

func TestGuardFailsClosed(t *testing.T) {
	failing := session.ReaderFunc(func(*http.Request) (bool, error) {
		return true, errors.New("cookie store unavailable")
	})
	guard := newTestGuard(t, failing, 0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	guard.Handler(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardSkipsReaderForUnprotectedPaths(t *testing.T) {
	reader := session.ReaderFunc(func(*http.Request) (bool, error) {
		t.Fatal("reader should not be consulted")
		return false, nil
	})
	guard := newTestGuard(t, reader, 0)

	assert.Equal(t, Decision{State: Allowed}, guard.Evaluate(httptest.NewRequest(http.MethodGet, "/login", nil)))
}

func TestGuardNilReader(t *testing.T) {
	guard := newTestGuard(t, nil, 0)
	assert.True(t, guard.Evaluate(httptest.NewRequest(http.MethodGet, "/dashboard", nil)).IsRedirect())
}

func TestGuardRedirectStatus(t *testing.T) {
	t.Run("configurable", func(t *testing.T) {
		guard := newTestGuard(t, session.NewCookieReader(""), http.StatusSeeOther)

		req := httptest.NewRequest(http.MethodPost, "/dashboard/settings", nil)
		w := httptest.NewRecorder()
		guard.Handler(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("rejects non redirect status", func(t *testing.T) {
		guard, err := NewGuard(newDashboardPolicy(), session.NewCookieReader(""), http.StatusMovedPermanently, zap.NewNop())
		assert.Nil(t, guard)
		assert.Error(t, err)
	})
}

func TestGuardDoesNotRememberDestination(t *testing.T) {
	guard := newTestGuard(t, session.NewCookieReader(""), 0)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/billing?tab=invoices", nil)
	w := httptest.NewRecorder()
	guard.Handler(http.NotFoundHandler()).ServeHTTP(w, req)

	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardLogsRedirects(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	guard, err := NewGuard(newDashboardPolicy(), session.NewCookieReader("session"), http.StatusTemporaryRedirect, zap.New(core))
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	guard.Handler(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, logs.Len())

	guard.Handler(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/billing", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/dashboard/billing", fields["path"])
	assert.Equal(t, "/login", fields["redirect"])
	assert.NotEmpty(t, fields["pattern"])
}

func TestGuardLogsThePatternItDecidedOn(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	policy := NewPolicy(MustNewMatcher("/dashboard/admin", "/dashboard/:path*"), "")
	guard, err := NewGuard(policy, session.NewCookieReader("session"), http.StatusTemporaryRedirect, zap.New(core))
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	guard.Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/admin/users", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/dashboard/admin", entries[0].ContextMap()["pattern"])
}

func TestNewGuardRejectsProtectedLoginPath(t *testing.T) {
	policy := NewPolicy(MustNewMatcher("/dashboard/:path*"), "/dashboard/login")

	guard, err := NewGuard(policy, session.NewCookieReader("session"), 0, zap.NewNop())
	assert.Nil(t, guard)
	assert.ErrorIs(t, err, ErrLoginPathProtected)
}
