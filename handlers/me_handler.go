package handlers

import (
	"net/http"

	"github.com/upb/llm-control-plane/dashboard/internal/layout"
	"github.com/upb/llm-control-plane/dashboard/middleware"
	"github.com/upb/llm-control-plane/dashboard/models"
	"github.com/upb/llm-control-plane/dashboard/utils"
	"go.uber.org/zap"
)

// CurrentUserResponse is the response body for GET /api/v1/me
type CurrentUserResponse struct {
	User    *models.User     `json:"user"`
	IsAdmin bool             `json:"is_admin"`
	Nav     []layout.NavItem `json:"nav"`
}

// MeHandler exposes the composed shell to client-side code
type MeHandler struct {
	logger *zap.Logger
}

// NewMeHandler creates a new MeHandler
func NewMeHandler(logger *zap.Logger) *MeHandler {
	return &MeHandler{logger: logger}
}

// HandleMe handles GET /api/v1/me
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	shell := middleware.ShellFromContext(r.Context())
	if shell == nil || !shell.Authenticated() {
		_ = utils.WriteUnauthorized(w, r, "Authentication required")
		return
	}

	if err := utils.WriteOK(w, CurrentUserResponse{
		User:    shell.User,
		IsAdmin: shell.IsAdmin,
		Nav:     shell.Nav,
	}); err != nil {
		h.logger.Error("failed to write current user", zap.Error(err))
	}
}
