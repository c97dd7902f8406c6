// Package layout builds the dashboard shell (navbar + sidebar) for a request.
// It is not involved in deciding whether a request may reach a page.
package layout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/upb/llm-control-plane/dashboard/cognito"
	"github.com/upb/llm-control-plane/dashboard/models"
	"github.com/upb/llm-control-plane/dashboard/repositories"
	"go.uber.org/zap"
)

// UserFinder loads the current user record
type UserFinder interface {
	GetByCognitoSub(ctx context.Context, cognitoSub string) (*models.User, error)
}

// TokenSource returns the raw session token carried by a request
type TokenSource interface {
	Token(r *http.Request) (string, error)
}

// NavItem is one sidebar entry
type NavItem struct {
	Label     string `json:"label"`
	Href      string `json:"href"`
	AdminOnly bool   `json:"admin_only,omitempty"`
	Active    bool   `json:"active,omitempty"`
}

// Shell carries everything the page chrome needs
type Shell struct {
	Title      string       `json:"title"`
	User       *models.User `json:"user"`
	IsAdmin    bool         `json:"is_admin"`
	Nav        []NavItem    `json:"nav"`
	ActivePath string       `json:"active_path"`
}

// Authenticated reports whether a user record was found
func (s *Shell) Authenticated() bool {
	return s.User != nil
}

// Composer assembles a Shell from the session token and the user store
type Composer struct {
	users  UserFinder
	tokens TokenSource
	nav    []NavItem
	title  string
	logger *zap.Logger
}

// NewComposer creates a composer with the full navigation; admin-only items
// are filtered per request.
func NewComposer(users UserFinder, tokens TokenSource, nav []NavItem, title string, logger *zap.Logger) *Composer {
	items := make([]NavItem, len(nav))
	copy(items, nav)
	return &Composer{
		users:  users,
		tokens: tokens,
		nav:    items,
		title:  title,
		logger: logger,
	}
}

// Compose builds the shell for r. A missing or unreadable session, or an
// unknown user, produces an anonymous shell. Store failures are returned.
func (c *Composer) Compose(ctx context.Context, r *http.Request) (*Shell, error) {
	shell := &Shell{Title: c.title, ActivePath: r.URL.Path}

	user, err := c.currentUser(ctx, r)
	if err != nil {
		return nil, err
	}
	shell.User = user
	shell.IsAdmin = user.IsAdmin()
	shell.Nav = c.navFor(shell.IsAdmin, r.URL.Path)

	return shell, nil
}

func (c *Composer) currentUser(ctx context.Context, r *http.Request) (*models.User, error) {
	if c.tokens == nil || c.users == nil {
		return nil, nil
	}

	token, err := c.tokens.Token(r)
	if err != nil {
		return nil, nil
	}

	claims, err := cognito.ExtractClaims(token)
	if err != nil {
		c.logger.Debug("session token is not a readable id token", zap.Error(err))
		return nil, nil
	}

	user, err := c.users.GetByCognitoSub(ctx, claims.Sub.String())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.logger.Debug("no user record for session subject", zap.String("sub", claims.Sub.String()))
			return nil, nil
		}
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return user, nil
}

func (c *Composer) navFor(isAdmin bool, activePath string) []NavItem {
	items := make([]NavItem, 0, len(c.nav))
	for _, item := range c.nav {
		if item.AdminOnly && !isAdmin {
			continue
		}
		item.Active = item.Href == activePath
		items = append(items, item)
	}
	return items
}
