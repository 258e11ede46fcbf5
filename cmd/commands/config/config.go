package config

import (
	"os"

	"netmonlabs/netmon/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage netmon configuration",
		Long: "View and modify persistent netmon settings.\n\n" +
			"Configuration is stored at ~/.config/netmon/config.json. Every key can\n" +
			"be overridden with an environment variable: api-url is read from\n" +
			config.EnvPrefix + "_API_URL, poll-interval from " + config.EnvPrefix + "_POLL_INTERVAL, and so on.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}

// isInteractive is replaced in tests.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
