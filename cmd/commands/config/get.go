package config

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"netmonlabs/netmon/internal/config"
	"netmonlabs/netmon/internal/tui"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Get a persistent configuration value.\n\n" +
			"If no key is provided and running in a terminal, opens an interactive\n" +
			"config viewer where you can browse and edit all settings. Otherwise\n" +
			"every key is listed with its effective value and where it comes from.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  netmon config get                     # interactive viewer\n" +
			"  netmon config get poll-interval       # print a single value",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().String("key", "", "Configuration key to fetch (same as the positional argument)")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	keyFlag, _ := cmd.Flags().GetString("key")
	if len(args) == 1 {
		keyFlag = args[0]
	}
	keyFlag = strings.TrimSpace(keyFlag)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// No key: open interactive config viewer.
	if keyFlag == "" {
		if isInteractive() {
			if err := tui.RunConfigView(); err != nil {
				return fmt.Errorf("config view failed: %w", err)
			}
			return nil
		}

		settings, err := cfg.Resolve()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
		fmt.Fprintln(w, "---\t-----\t------")
		for i := range config.Keys {
			spec := &config.Keys[i]
			fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, effective(settings, spec.Name), cfg.Source(spec))
		}
		return w.Flush()
	}

	key := config.NormalizeKey(keyFlag)

	spec := config.Lookup(key)
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", keyFlag, strings.Join(config.KeyNames(), ", "))
	}

	settings, err := cfg.Resolve()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), effective(settings, spec.Name))
	return nil
}

// effective returns the resolved value of key as text.
func effective(s *config.Settings, key string) string {
	switch key {
	case "api-url":
		return s.APIURL
	case "poll-interval":
		return s.PollInterval.String()
	case "request-timeout":
		return s.RequestTimeout.String()
	case "log-level":
		return s.LogLevel
	}
	return ""
}
