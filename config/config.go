package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/llm-control-plane/dashboard/internal/routeguard"
	"github.com/upb/llm-control-plane/dashboard/utils"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cognito       CognitoConfig
	RouteGuard    RouteGuardConfig
	Prefetch      PrefetchConfig
	Navigation    []NavItem
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// CognitoConfig holds AWS Cognito hosted UI configuration
type CognitoConfig struct {
	Region        string
	UserPoolID    string
	ClientID      string
	ClientSecret  string
	Domain        string // Cognito domain (e.g., https://my-app.auth.us-east-1.amazoncognito.com)
	RedirectURI   string // OAuth2 callback URL
	PostLoginPath string // Where the callback sends the browser once the session cookie is set
}

// Configured reports whether the hosted UI can be used
func (c CognitoConfig) Configured() bool {
	return c.Domain != "" && c.ClientID != ""
}

// RouteGuardConfig controls which paths require a session cookie.
// It is fixed at startup.
type RouteGuardConfig struct {
	Matchers       []string `yaml:"matchers" validate:"required,min=1,dive,startswith=/"`
	LoginPath      string   `yaml:"login_path" validate:"required,startswith=/"`
	SessionCookie  string   `yaml:"session_cookie" validate:"required"`
	RedirectStatus int      `yaml:"redirect_status" validate:"oneof=302 303 307"`
}

// PrefetchConfig lists routes advertised to browsers as prefetch candidates
type PrefetchConfig struct {
	Routes []string `yaml:"routes" validate:"dive,startswith=/"`
}

// NavItem is one sidebar entry
type NavItem struct {
	Label     string `yaml:"label" validate:"required"`
	Href      string `yaml:"href" validate:"required,startswith=/"`
	AdminOnly bool   `yaml:"admin_only"`
}

// CORSConfig holds the allowed origins for the JSON API
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// fileConfig is the optional YAML overlay loaded from DASHBOARD_CONFIG_FILE
type fileConfig struct {
	RouteGuard *RouteGuardConfig `yaml:"route_guard"`
	Prefetch   *PrefetchConfig   `yaml:"prefetch"`
	Navigation []NavItem         `yaml:"navigation"`
}

// DefaultNavigation is the sidebar used when no navigation is configured
func DefaultNavigation() []NavItem {
	return []NavItem{
		{Label: "Overview", Href: "/dashboard"},
		{Label: "Billing", Href: "/dashboard/billing"},
		{Label: "Settings", Href: "/dashboard/settings"},
		{Label: "Admin", Href: "/dashboard/admin", AdminOnly: true},
	}
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Cognito: CognitoConfig{
			Region:        getEnv("COGNITO_REGION", "us-east-1"),
			UserPoolID:    getEnv("COGNITO_USER_POOL_ID", ""),
			ClientID:      getEnv("COGNITO_CLIENT_ID", ""),
			ClientSecret:  getEnv("COGNITO_CLIENT_SECRET", ""),
			Domain:        getEnv("COGNITO_DOMAIN", ""),
			RedirectURI:   getEnv("COGNITO_REDIRECT_URI", "http://localhost:3000/auth/callback"),
			PostLoginPath: getEnv("POST_LOGIN_PATH", "/dashboard"),
		},
		RouteGuard: RouteGuardConfig{
			Matchers:       getEnvAsSlice("ROUTE_GUARD_MATCHERS", []string{"/dashboard/:path*"}),
			LoginPath:      getEnv("LOGIN_PATH", routeguard.DefaultLoginPath),
			SessionCookie:  getEnv("SESSION_COOKIE_NAME", "session"),
			RedirectStatus: getEnvAsInt("ROUTE_GUARD_REDIRECT_STATUS", 307),
		},
		Prefetch: PrefetchConfig{
			Routes: getEnvAsSlice("PREFETCH_ROUTES", []string{"/dashboard", "/dashboard/settings"}),
		},
		Navigation: DefaultNavigation(),
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Server.TLS.Enabled = getEnvAsBool("TLS_ENABLED", false)
	cfg.Server.TLS.CertFile = getEnv("TLS_CERT_FILE", "certs/cert.pem")
	cfg.Server.TLS.KeyFile = getEnv("TLS_KEY_FILE", "certs/key.pem")

	if path := getEnv("DASHBOARD_CONFIG_FILE", ""); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays route guard, prefetch and navigation settings from a YAML file.
// Sections absent from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if rg := fc.RouteGuard; rg != nil {
		if len(rg.Matchers) > 0 {
			c.RouteGuard.Matchers = rg.Matchers
		}
		if rg.LoginPath != "" {
			c.RouteGuard.LoginPath = rg.LoginPath
		}
		if rg.SessionCookie != "" {
			c.RouteGuard.SessionCookie = rg.SessionCookie
		}
		if rg.RedirectStatus != 0 {
			c.RouteGuard.RedirectStatus = rg.RedirectStatus
		}
	}
	if fc.Prefetch != nil {
		c.Prefetch.Routes = fc.Prefetch.Routes
	}
	if len(fc.Navigation) > 0 {
		c.Navigation = fc.Navigation
	}
	return nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Cognito validation (required in production)
	if c.IsProduction() {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("cognito user pool ID is required in production")
		}
		if c.Cognito.ClientID == "" {
			return fmt.Errorf("cognito client ID is required in production")
		}
	}

	if err := utils.ValidateStruct(c.RouteGuard); err != nil {
		return fmt.Errorf("route guard: %w", err)
	}
	matcher, err := routeguard.NewMatcher(c.RouteGuard.Matchers...)
	if err != nil {
		return fmt.Errorf("route guard: %w", err)
	}
	if err := routeguard.CheckLoginPath(matcher, c.RouteGuard.LoginPath); err != nil {
		return fmt.Errorf("route guard: %w", err)
	}
	if err := utils.ValidateStruct(c.Prefetch); err != nil {
		return fmt.Errorf("prefetch: %w", err)
	}
	for i, item := range c.Navigation {
		if err := utils.ValidateStruct(item); err != nil {
			return fmt.Errorf("navigation item %d: %w", i, err)
		}
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	pool := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		pool.ConnectionString = dbURL
		return pool
	}
	pool.Host = getEnv("DB_HOST", "localhost")
	pool.Port = getEnvAsInt("DB_PORT", 5432)
	pool.User = getEnv("DB_USER", "dev")
	pool.Password = getEnv("DB_PASSWORD", "")
	pool.Database = getEnv("DB_NAME", "dashboard")
	pool.SSLMode = getEnv("DB_SSLMODE", "disable")
	return pool
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3000)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 3000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice splits a comma separated variable, dropping empty entries
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
