package auth

import (
	"fmt"
	"text/tabwriter"
	"time"

	"netmonlabs/netmon/internal/services/auth"
	"netmonlabs/netmon/internal/tui"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long: `Show whether a session token is stored and, for JWTs, who it belongs to
and when it expires.

Example:
  netmon auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			status := tui.LoadSessionStatus(auth.DefaultStore(), a.Client.BaseURL())

			// Use TUI in interactive terminal.
			if isInteractive() {
				if err := tui.RunAuthStatus(status); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			// Non-interactive fallback.
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, row := range status.Rows(time.Now()) {
				fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
			}
			return w.Flush()
		},
		SilenceUsage: true,
	}

	return cmd
}
