package handlers

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/llm-control-plane/dashboard/middleware"
	"github.com/upb/llm-control-plane/dashboard/web"
	"go.uber.org/zap"
)

// PageHandler renders the HTML pages. The layout shell comes from the
// request context (middleware.LoadShell) and is empty when absent.
type PageHandler struct {
	renderer          *web.Renderer
	cognitoConfigured bool
	logger            *zap.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(renderer *web.Renderer, cognitoConfigured bool, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		renderer:          renderer,
		cognitoConfigured: cognitoConfigured,
		logger:            logger,
	}
}

// HandleLanding handles GET /
func (h *PageHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageLanding, "")
}

// HandleLogin handles GET /login
func (h *PageHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageLogin, "")
}

// HandleOverview handles GET /dashboard
func (h *PageHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageOverview, "")
}

// HandleBilling handles GET /dashboard/billing
func (h *PageHandler) HandleBilling(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageBilling, "")
}

// HandleSettings handles GET /dashboard/settings
func (h *PageHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageSettings, "")
}

// HandleAdmin handles GET /dashboard/admin; access is checked by RequireAdmin
func (h *PageHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageAdmin, "")
}

// HandleForbidden renders the 403 page
func (h *PageHandler) HandleForbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, web.PageForbidden, "This section is limited to organization administrators.")
}

// HandleNotFound renders the 404 page
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, web.PageNotFound, "")
}

// HandleError renders the error page with 500; it satisfies middleware.ErrorResponder
func (h *PageHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	h.renderer.Error(w, http.StatusInternalServerError, web.PageData{
		Shell:     middleware.ShellFromContext(r.Context()),
		RequestID: chimw.GetReqID(r.Context()),
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page web.Page, message string) {
	data := web.PageData{
		Shell:             middleware.ShellFromContext(r.Context()),
		Message:           message,
		RequestID:         chimw.GetReqID(r.Context()),
		CognitoConfigured: h.cognitoConfigured,
	}
	if err := h.renderer.Render(w, status, page, data); err != nil {
		h.logger.Error("failed to render page",
			zap.String("request_id", data.RequestID),
			zap.String("page", string(page)),
			zap.Error(err))
		if errors.Is(err, web.ErrResponseStarted) {
			return
		}
		h.HandleError(w, r, err)
	}
}
