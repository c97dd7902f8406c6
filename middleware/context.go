package middleware

import (
	"context"

	"github.com/upb/llm-control-plane/dashboard/internal/layout"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ShellKey is the context key for the composed layout shell
	ShellKey contextKey = "shell"
)

// ShellFromContext retrieves the layout shell from context
func ShellFromContext(ctx context.Context) *layout.Shell {
	if val := ctx.Value(ShellKey); val != nil {
		if shell, ok := val.(*layout.Shell); ok {
			return shell
		}
	}
	return nil
}

// WithShell adds the layout shell to the context
func WithShell(ctx context.Context, shell *layout.Shell) context.Context {
	return context.WithValue(ctx, ShellKey, shell)
}
