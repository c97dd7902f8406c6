// Package web holds the embedded HTML pages and the renderer that fills
// them with the request's layout shell.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/upb/llm-control-plane/dashboard/internal/layout"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrResponseStarted wraps a failure to write a page whose status line was
// already sent; nothing more can be written to that response.
var ErrResponseStarted = errors.New("response already started")

// Page names a renderable template
type Page string

const (
	PageLanding   Page = "landing"
	PageLogin     Page = "login"
	PageOverview  Page = "overview"
	PageBilling   Page = "billing"
	PageSettings  Page = "settings"
	PageAdmin     Page = "admin"
	PageForbidden Page = "forbidden"
	PageNotFound  Page = "not_found"
	PageError     Page = "error"
)

var allPages = []Page{
	PageLanding, PageLogin, PageOverview, PageBilling, PageSettings,
	PageAdmin, PageForbidden, PageNotFound, PageError,
}

// PageData is passed to every template
type PageData struct {
	Shell             *layout.Shell
	Message           string
	RequestID         string
	CognitoConfigured bool
}

// Renderer executes the embedded page templates
type Renderer struct {
	pages  map[Page]*template.Template
	logger *zap.Logger
}

// NewRenderer parses every page against the shared layout
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := template.New("layout.html").
		Funcs(template.FuncMap{"hasPrefix": strings.HasPrefix}).
		ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[Page]*template.Template, len(allPages))
	for _, page := range allPages {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", page, err)
		}
		if _, err := tmpl.ParseFS(templateFS, "templates/"+string(page)+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page with the given status. Output is buffered so a template
// failure never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page Page, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.Shell == nil {
		data.Shell = &layout.Shell{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrResponseStarted, page, err)
	}
	return nil
}

// Error renders the error page, falling back to plain text if that fails too
func (r *Renderer) Error(w http.ResponseWriter, status int, data PageData) {
	if err := r.Render(w, status, PageError, data); err != nil {
		r.logger.Error("failed to render error page", zap.Error(err))
		if errors.Is(err, ErrResponseStarted) {
			return
		}
		http.Error(w, http.StatusText(status), status)
	}
}
