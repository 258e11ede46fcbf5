package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"netmonlabs/netmon/cmd/commands/audit"
	"netmonlabs/netmon/cmd/commands/auth"
	cfgcmd "netmonlabs/netmon/cmd/commands/config"
	"netmonlabs/netmon/cmd/commands/dashboard"
	"netmonlabs/netmon/cmd/commands/simulate"
	"netmonlabs/netmon/cmd/commands/telemetry"
	"netmonlabs/netmon/internal/auditlog"
	"netmonlabs/netmon/internal/domain"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "netmon",
		Short: "A terminal client for the network monitoring backend",
		Long: `netmon is a command-line client for the network monitoring backend.
It registers and signs in operators, polls device telemetry and shows it
as a searchable table with status, anomaly and performance charts.

Quick start:
  netmon simulate                  # Run a local backend with generated data
  netmon auth register             # Create an operator account
  netmon auth login                # Sign in and store the session token
  netmon dashboard                 # Live telemetry dashboard`,
		SilenceErrors: true,
	}

	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(dashboard.NewCommand())
	cmd.AddCommand(simulate.NewCommand())
	cmd.AddCommand(telemetry.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	start := time.Now()
	executed, err := root.ExecuteC()

	if shouldAudit(executed) {
		auditlog.Record(executed.Context(), auditlog.OpenDefault, executed.CommandPath(), os.Args[1:], err, start)
	}

	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", domain.UserMessage(err))
		os.Exit(1)
	}
}

// shouldAudit skips help, completion and the audit commands themselves.
func shouldAudit(c *cobra.Command) bool {
	if c == nil || !c.Runnable() {
		return false
	}
	path := c.CommandPath()
	for _, skip := range []string{"netmon audit", "netmon help", "netmon completion", "netmon simulate"} {
		if path == skip || strings.HasPrefix(path, skip+" ") {
			return false
		}
	}
	return true
}
