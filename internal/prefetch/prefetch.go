// Package prefetch advertises dashboard routes to browsers through Link
// headers so navigation between sections starts warm.
package prefetch

import (
	"fmt"
	"net/http"
	"strings"
)

// skipPrefixes never receive hints; they are not HTML pages
var skipPrefixes = []string{"/api", "/auth", "/oauth2", "/healthz", "/readyz"}

// Hints adds Link: <route>; rel=prefetch headers to page requests
type Hints struct {
	routes []string
}

// New builds hints for routes. Routes must start with "/"; duplicates are dropped.
func New(routes []string) (*Hints, error) {
	kept := make([]string, 0, len(routes))
	seen := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		route = strings.TrimSpace(route)
		if route == "" {
			continue
		}
		if !strings.HasPrefix(route, "/") {
			return nil, fmt.Errorf("prefetch route %q must start with /", route)
		}
		if _, ok := seen[route]; ok {
			continue
		}
		seen[route] = struct{}{}
		kept = append(kept, route)
	}
	return &Hints{routes: kept}, nil
}

// Links returns the header values a request for path would receive
func (h *Hints) Links(path string) []string {
	links := make([]string, 0, len(h.routes))
	for _, route := range h.routes {
		// the current page is already loaded
		if route == path {
			continue
		}
		links = append(links, "<"+route+">; rel=prefetch")
	}
	return links
}

// Handler adds the hints before next writes the response
func (h *Hints) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if applies(r) {
			for _, link := range h.Links(r.URL.Path) {
				w.Header().Add("Link", link)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func applies(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	path := r.URL.Path
	for _, prefix := range skipPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return false
		}
	}
	return true
}
