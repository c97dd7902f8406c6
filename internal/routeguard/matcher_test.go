package routeguard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{name: "plain prefix", pattern: "/dashboard"},
		{name: "explicit subtree wildcard", pattern: "/dashboard/:path*"},
		{name: "one or more wildcard", pattern: "/dashboard/:path+"},
		{name: "segment parameter", pattern: "/orgs/:id/settings"},
		{name: "root", pattern: "/"},
		{name: "trailing slash", pattern: "/dashboard/"},
		{name: "empty", pattern: "", wantErr: true},
		{name: "relative", pattern: "dashboard", wantErr: true},
		{name: "empty middle segment", pattern: "/dashboard//x", wantErr: true},
		{name: "bare wildcard", pattern: "/dashboard/*", wantErr: true},
		{name: "wildcard not last", pattern: "/dashboard/:path*/edit", wantErr: true},
		{name: "empty parameter name", pattern: "/dashboard/:", wantErr: true},
		{name: "empty wildcard name", pattern: "/dashboard/:*", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPattern)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/dashboard/:path*", "/dashboard", true},
		{"/dashboard/:path*", "/dashboard/", true},
		{"/dashboard/:path*", "/dashboard/settings", true},
		{"/dashboard/:path*", "/dashboard/settings/advanced", true},
		{"/dashboard/:path*", "/dashboardish", false},
		{"/dashboard/:path*", "/dashboard-other", false},
		{"/dashboard/:path*", "/Dashboard", false},
		{"/dashboard/:path*", "/", false},
		{"/dashboard/:path*", "/login", false},
		{"/dashboard/:path*", "/api/dashboard", false},

		{"/dashboard", "/dashboard", true},
		{"/dashboard", "/dashboard/billing", true},
		{"/dashboard", "/dashboardish", false},

		{"/dashboard/:path+", "/dashboard", false},
		{"/dashboard/:path+", "/dashboard/", false},
		{"/dashboard/:path+", "/dashboard/billing", true},

		{"/orgs/:id/settings", "/orgs/42/settings", true},
		{"/orgs/:id/settings", "/orgs/42/settings/members", true},
		{"/orgs/:id/settings", "/orgs//settings", false},
		{"/orgs/:id/settings", "/orgs/42", false},

		{"/", "/", true},
		{"/", "/anything/at/all", true},

		{"/dashboard/:path*", "", false},
		{"/dashboard/:path*", "dashboard", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.path))
		})
	}
}

func TestMatcher(t *testing.T) {
	t.Run("first matching pattern wins", func(t *testing.T) {
		m, err := NewMatcher("/dashboard/admin", "/dashboard/:path*")
		require.NoError(t, err)

		p, ok := m.MatchedPattern("/dashboard/admin/users")
		require.True(t, ok)
		assert.Equal(t, "/dashboard/admin", p.String())

		p, ok = m.MatchedPattern("/dashboard/billing")
		require.True(t, ok)
		assert.Equal(t, "/dashboard/:path*", p.String())
	})

	t.Run("patterns are trimmed and kept in order", func(t *testing.T) {
		m, err := NewMatcher(" /dashboard/:path* ", "/reports")
		require.NoError(t, err)

		if diff := cmp.Diff([]string{"/dashboard/:path*", "/reports"}, m.Patterns()); diff != "" {
			t.Errorf("Patterns() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid pattern fails construction", func(t *testing.T) {
		m, err := NewMatcher("/dashboard/:path*", "reports")
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("empty matcher protects nothing", func(t *testing.T) {
		m, err := NewMatcher()
		require.NoError(t, err)
		assert.False(t, m.IsProtected("/dashboard"))
	})

	t.Run("MustNewMatcher panics on invalid pattern", func(t *testing.T) {
		assert.Panics(t, func() { MustNewMatcher("no-slash") })
	})
}
