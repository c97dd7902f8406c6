package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/llm-control-plane/dashboard/auth"
	"github.com/upb/llm-control-plane/dashboard/config"
	"github.com/upb/llm-control-plane/dashboard/handlers"
	"github.com/upb/llm-control-plane/dashboard/internal/layout"
	"github.com/upb/llm-control-plane/dashboard/internal/prefetch"
	"github.com/upb/llm-control-plane/dashboard/internal/routeguard"
	"github.com/upb/llm-control-plane/dashboard/internal/session"
	"github.com/upb/llm-control-plane/dashboard/middleware"
	"github.com/upb/llm-control-plane/dashboard/repositories"
	"github.com/upb/llm-control-plane/dashboard/repositories/postgres"
	"github.com/upb/llm-control-plane/dashboard/web"
	"go.uber.org/zap"
)

// Title is shown in the navbar and page titles
const Title = "LLM Control Plane"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users repositories.UserRepository

	// Route protection
	Policy   *routeguard.Policy
	Guard    *routeguard.Guard
	Sessions *session.CookieReader

	// Presentation
	Composer *layout.Composer
	Shells   *middleware.ShellMiddleware
	Renderer *web.Renderer
	Prefetch *prefetch.Hints

	// Handlers
	Pages  *handlers.PageHandler
	Health *handlers.HealthHandler
	Me     *handlers.MeHandler
	Auth   *auth.Handler
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := factory.GetDB()
	if err := db.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	repos := factory.NewRepositories()
	deps, err := NewDependenciesWithStore(cfg, logger, repos.Users, db)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	deps.RepoFactory = factory
	deps.DB = db

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithStore wires everything except the database connection.
// users and health may be nil; pages then render an anonymous shell.
func NewDependenciesWithStore(cfg *config.Config, logger *zap.Logger, users repositories.UserRepository, health handlers.HealthChecker) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Users:  users,
	}

	if err := deps.initRouteGuard(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize route guard: %w", err)
	}

	if err := deps.initPresentation(cfg, users); err != nil {
		return nil, fmt.Errorf("failed to initialize pages: %w", err)
	}

	deps.initAuth(cfg)

	deps.Health = handlers.NewHealthHandler(health, logger)
	deps.Me = handlers.NewMeHandler(logger)

	return deps, nil
}

// initRouteGuard compiles the protected patterns and builds the gate
func (d *Dependencies) initRouteGuard(cfg *config.Config) error {
	matcher, err := routeguard.NewMatcher(cfg.RouteGuard.Matchers...)
	if err != nil {
		return err
	}

	d.Policy = routeguard.NewPolicy(matcher, cfg.RouteGuard.LoginPath)
	d.Sessions = session.NewCookieReader(cfg.RouteGuard.SessionCookie)

	guard, err := routeguard.NewGuard(d.Policy, d.Sessions, cfg.RouteGuard.RedirectStatus, d.Logger)
	if err != nil {
		return err
	}
	d.Guard = guard

	d.Logger.Info("route guard initialized",
		zap.Strings("matchers", matcher.Patterns()),
		zap.String("login_path", d.Policy.LoginPath()),
		zap.String("session_cookie", d.Sessions.Name()))
	return nil
}

func (d *Dependencies) initPresentation(cfg *config.Config, users repositories.UserRepository) error {
	renderer, err := web.NewRenderer(d.Logger)
	if err != nil {
		return err
	}
	d.Renderer = renderer

	hints, err := prefetch.New(cfg.Prefetch.Routes)
	if err != nil {
		return err
	}
	d.Prefetch = hints

	var finder layout.UserFinder
	if users != nil {
		finder = users
	}
	d.Composer = layout.NewComposer(finder, d.Sessions, navigation(cfg.Navigation), Title, d.Logger)

	d.Pages = handlers.NewPageHandler(renderer, cfg.Cognito.Configured(), d.Logger)
	d.Shells = middleware.NewShellMiddleware(d.Composer, d.Pages.HandleError, d.Logger)
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	var exchanger auth.TokenExchanger
	if cfg.Cognito.Configured() {
		exchanger = auth.NewCognitoTokenExchanger(cfg.Cognito, nil)
		d.Logger.Info("auth handler initialized")
	} else {
		d.Logger.Warn("cognito not configured, auth endpoints disabled")
	}
	d.Auth = auth.NewHandler(cfg.Cognito, cfg.RouteGuard.SessionCookie, cfg.RouteGuard.LoginPath, exchanger, d.Users, d.Logger)
}

// navigation converts configured sidebar entries, falling back to the defaults
func navigation(items []config.NavItem) []layout.NavItem {
	if len(items) == 0 {
		items = config.DefaultNavigation()
	}
	nav := make([]layout.NavItem, 0, len(items))
	for _, item := range items {
		nav = append(nav, layout.NavItem{
			Label:     item.Label,
			Href:      item.Href,
			AdminOnly: item.AdminOnly,
		})
	}
	return nav
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	return nil
}
