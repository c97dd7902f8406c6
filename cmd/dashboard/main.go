package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/llm-control-plane/dashboard/config"
	"github.com/upb/llm-control-plane/dashboard/internal/observability"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Control plane dashboard front end",
		Long:         "Serves the dashboard pages and redirects visitors without a session cookie away from protected routes.",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckRouteCmd())
	return root
}

// initLogger builds the process logger from the observability settings
func initLogger(cfg config.ObservabilityConfig) (*zap.Logger, error) {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	logger, err := observability.NewLogger(level, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
