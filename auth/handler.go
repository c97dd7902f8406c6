package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/upb/llm-control-plane/dashboard/cognito"
	"github.com/upb/llm-control-plane/dashboard/config"
	"github.com/upb/llm-control-plane/dashboard/internal/session"
	"github.com/upb/llm-control-plane/dashboard/models"
	"github.com/upb/llm-control-plane/dashboard/repositories"
	"github.com/upb/llm-control-plane/dashboard/utils"
	"go.uber.org/zap"
)

const (
	// StateCookieName is the cookie name for OAuth state (CSRF)
	StateCookieName     = "oauth_state"
	stateCookieMaxAge   = 600
	sessionCookieMaxAge = 86400 * 7 // 7 days
)

// TokenExchanger exchanges OAuth2 authorization codes for an ID token
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (idToken string, err error)
}

// UserStore looks up and provisions user records
type UserStore interface {
	GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Handler handles the hosted UI flow (login, callback, logout) and owns the
// session cookie lifecycle.
type Handler struct {
	cfg           config.CognitoConfig
	sessionCookie string
	loginPath     string
	exchanger     TokenExchanger
	users         UserStore
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler creates a new auth handler. With a nil users store no user
// records are provisioned on login.
func NewHandler(cfg config.CognitoConfig, sessionCookie, loginPath string, exchanger TokenExchanger, users UserStore, logger *zap.Logger) *Handler {
	if sessionCookie == "" {
		sessionCookie = session.DefaultCookieName
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	if cfg.PostLoginPath == "" {
		cfg.PostLoginPath = "/dashboard"
	}
	return &Handler{
		cfg:           cfg,
		sessionCookie: sessionCookie,
		loginPath:     loginPath,
		exchanger:     exchanger,
		users:         users,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleLogin redirects to Cognito hosted UI for OAuth2 authorization
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Configured() {
		h.logger.Error("cognito not configured")
		_ = utils.WriteInternalServerError(w, r, "Authentication not configured")
		return
	}

	state, err := generateSecureState()
	if err != nil {
		h.logger.Error("failed to generate state", zap.Error(err))
		_ = utils.WriteInternalServerError(w, r, "Failed to initiate login")
		return
	}

	http.SetCookie(w, h.cookie(StateCookieName, state, stateCookieMaxAge))

	authURL := buildAuthURL(h.cfg.Domain, h.cfg.ClientID, h.cfg.RedirectURI, state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback exchanges the authorization code, checks the ID token is
// readable, creates the user record on first login, sets the session cookie
// and sends the browser to the dashboard
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(zap.String("request_id", chimw.GetReqID(r.Context())))
	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		logger.Info("hosted UI returned an error",
			zap.String("error", reason),
			zap.String("description", query.Get("error_description")))
		http.Redirect(w, r, h.loginPath, http.StatusFound)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" {
		_ = utils.WriteBadRequest(w, r, "Missing authorization code", nil)
		return
	}
	if state == "" {
		_ = utils.WriteBadRequest(w, r, "Missing state parameter", nil)
		return
	}

	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || stateCookie.Value != state {
		_ = utils.WriteBadRequest(w, r, "Invalid or expired state", nil)
		return
	}
	http.SetCookie(w, h.cookie(StateCookieName, "", -1))

	if h.exchanger == nil || !h.cfg.Configured() {
		logger.Error("token exchanger not configured")
		_ = utils.WriteInternalServerError(w, r, "Authentication not configured")
		return
	}

	idToken, err := h.exchanger.ExchangeCode(r.Context(), code, h.cfg.RedirectURI)
	if err != nil {
		logger.Warn("token exchange failed", zap.Error(err))
		_ = utils.WriteUnauthorized(w, r, "Authentication failed")
		return
	}

	claims, err := cognito.ExtractClaims(idToken)
	if err != nil {
		logger.Warn("unreadable id token", zap.Error(err))
		_ = utils.WriteUnauthorized(w, r, "Invalid token")
		return
	}
	if claims.Expired(h.now()) {
		logger.Warn("expired id token", zap.String("sub", claims.Sub.String()))
		_ = utils.WriteUnauthorized(w, r, "Invalid token")
		return
	}

	created, err := h.ensureUser(r.Context(), claims)
	if err != nil {
		logger.Error("failed to provision user", zap.String("sub", claims.Sub.String()), zap.Error(err))
		_ = utils.WriteInternalServerError(w, r, "Failed to provision user")
		return
	}
	if created {
		logger.Info("user provisioned", zap.String("sub", claims.Sub.String()))
	}

	http.SetCookie(w, h.cookie(h.sessionCookie, idToken, sessionCookieMaxAge))

	logger.Info("session started", zap.String("sub", claims.Sub.String()))
	http.Redirect(w, r, h.cfg.PostLoginPath, http.StatusFound)
}

// HandleLogout clears the session cookie and redirects to Cognito logout,
// or to the login page when the hosted UI is not configured
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie(h.sessionCookie, "", -1))

	if !h.cfg.Configured() {
		http.Redirect(w, r, h.loginPath, http.StatusFound)
		return
	}

	logoutURL := buildLogoutURL(h.cfg.Domain, h.cfg.ClientID, h.cfg.RedirectURI)
	http.Redirect(w, r, logoutURL, http.StatusFound)
}

// ensureUser creates a user record for a subject seen for the first time.
// The role comes from custom:userRole when it names a known role, else member.
func (h *Handler) ensureUser(ctx context.Context, claims *cognito.ParsedClaims) (bool, error) {
	if h.users == nil {
		return false, nil
	}

	sub := claims.Sub.String()
	_, err := h.users.GetByCognitoSub(ctx, sub)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	orgID := uuid.Nil
	if claims.OrgID != nil {
		orgID = *claims.OrgID
	}
	role := models.UserRole(claims.Role)
	if !role.Valid() {
		role = models.RoleMember
	}

	if err := h.users.Create(ctx, models.NewUser(claims.Email, claims.Name, sub, orgID, role)); err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}

// cookie builds an HttpOnly cookie scoped to the whole site. SameSite=Lax so
// the cookies survive the top-level redirect back from the hosted UI.
func (h *Handler) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.cfg.RedirectURI, "https"),
		SameSite: http.SameSiteLaxMode,
	}
}

func buildAuthURL(domain, clientID, redirectURI, state string) string {
	base := strings.TrimSuffix(domain, "/") + "/oauth2/authorize"
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"state":         {state},
		"scope":         {"openid email profile"},
	}
	return base + "?" + params.Encode()
}

func buildLogoutURL(domain, clientID, redirectURI string) string {
	parsed, err := url.Parse(redirectURI)
	logoutURI := redirectURI
	if err == nil && parsed.Scheme != "" && parsed.Host != "" {
		logoutURI = parsed.Scheme + "://" + parsed.Host
	}
	base := strings.TrimSuffix(domain, "/") + "/logout"
	params := url.Values{
		"client_id":  {clientID},
		"logout_uri": {logoutURI},
	}
	return base + "?" + params.Encode()
}

func generateSecureState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
