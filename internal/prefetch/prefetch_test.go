package prefetch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h, err := New([]string{"/dashboard", " /dashboard/settings ", "", "/dashboard"})
	require.NoError(t, err)

	want := []string{"</dashboard>; rel=prefetch", "</dashboard/settings>; rel=prefetch"}
	if diff := cmp.Diff(want, h.Links("/")); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	_, err = New([]string{"dashboard"})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	h, err := New([]string{"/dashboard", "/dashboard/settings"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		want   []string
	}{
		{
			name:   "landing page gets every hint",
			method: http.MethodGet,
			path:   "/",
			want:   []string{"</dashboard>; rel=prefetch", "</dashboard/settings>; rel=prefetch"},
		},
		{
			name:   "current page is not hinted",
			method: http.MethodGet,
			path:   "/dashboard",
			want:   []string{"</dashboard/settings>; rel=prefetch"},
		},
		{name: "api is skipped", method: http.MethodGet, path: "/api/v1/me"},
		{name: "health probe is skipped", method: http.MethodGet, path: "/healthz"},
		{name: "readiness probe is skipped", method: http.MethodGet, path: "/readyz"},
		{name: "auth endpoints are skipped", method: http.MethodGet, path: "/auth/callback"},
		{name: "post is skipped", method: http.MethodPost, path: "/dashboard/settings"},
		{
			name:   "prefix lookalike still gets hints",
			method: http.MethodGet,
			path:   "/apiary",
			want:   []string{"</dashboard>; rel=prefetch", "</dashboard/settings>; rel=prefetch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			h.Handler(next).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.True(t, called)
			got := rec.Header().Values("Link")
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
