package audit

import "github.com/spf13/cobra"

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "View and manage audit history",
		Long: `View the local audit trail of netmon commands and prune old entries.

Every run of auth register, login, logout and status, the telemetry
commands and the dashboard is recorded with its outcome, the backend URL it
talked to and its target (the account name, or the file written by
telemetry export). Passwords passed as flags are redacted. The audit,
simulate, help and completion commands are not recorded.

History is stored next to the config file in netmon.db.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
