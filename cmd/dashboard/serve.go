package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/upb/llm-control-plane/dashboard/app"
	"github.com/upb/llm-control-plane/dashboard/config"
	"github.com/upb/llm-control-plane/dashboard/routes"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var noDatabase bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.New(ctx)
			if err != nil {
				return err
			}

			logger, err := initLogger(cfg.Observability)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var deps *app.Dependencies
			if noDatabase {
				logger.Warn("running without a user store; pages render anonymous shells")
				deps, err = app.NewDependenciesWithStore(cfg, logger, nil, nil)
			} else {
				deps, err = app.NewDependencies(ctx, cfg, logger)
			}
			if err != nil {
				logger.Error("failed to initialize dependencies", zap.Error(err))
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := deps.Close(closeCtx); err != nil {
					logger.Error("failed to close dependencies", zap.Error(err))
				}
			}()

			srv := &http.Server{
				Addr:              cfg.Server.Address(),
				Handler:           routes.SetupRoutes(deps),
				ReadTimeout:       cfg.Server.ReadTimeout,
				ReadHeaderTimeout: 5 * time.Second,
				WriteTimeout:      cfg.Server.WriteTimeout,
			}

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}

			return runServer(ctx, srv, ln, cfg.Server, logger)
		},
	}

	cmd.Flags().BoolVar(&noDatabase, "no-database", false, "Start without PostgreSQL (anonymous layout, readiness reports not_configured)")
	return cmd
}

// runServer serves on ln until ctx is done, then shuts down within the
// configured timeout
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, cfg config.ServerConfig, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", ln.Addr().String()),
			zap.Bool("tls", cfg.TLS.Enabled))

		var err error
		if cfg.TLS.Enabled {
			err = srv.ServeTLS(ln, cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("shutting down server", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
