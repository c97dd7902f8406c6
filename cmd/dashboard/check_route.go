package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/llm-control-plane/dashboard/config"
	"github.com/upb/llm-control-plane/dashboard/internal/routeguard"
)

func newCheckRouteCmd() *cobra.Command {
	var (
		hasCookie bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "check-route PATH",
		Short: "Print the route guard decision for a path",
		Long: "Evaluates PATH against the configured protected patterns, as if the\n" +
			"request did or did not carry the session cookie, and prints\n" +
			"\"allow\" or \"redirect <login path>\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(cmd.Context())
			if err != nil {
				return err
			}

			matcher, err := routeguard.NewMatcher(cfg.RouteGuard.Matchers...)
			if err != nil {
				return err
			}
			policy := routeguard.NewPolicy(matcher, cfg.RouteGuard.LoginPath)

			pattern, protected := matcher.MatchedPattern(args[0])
			decision := policy.DecideMatched(protected, hasCookie)
			fmt.Fprintln(cmd.OutOrStdout(), decision)

			if verbose {
				if protected {
					fmt.Fprintf(cmd.OutOrStdout(), "matched %s\n", pattern)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no protected pattern matched")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hasCookie, "cookie", false, "Evaluate as if the session cookie were present")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print the matching pattern")
	return cmd
}
