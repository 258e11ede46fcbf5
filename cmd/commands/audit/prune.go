package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"netmonlabs/netmon/internal/auditlog"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than a duration",
		Long: `Delete audit entries older than a duration.

With --command only entries for that command are removed, which is handy
for trimming the entry a long-running 'netmon telemetry watch' or dashboard
session leaves behind while keeping the auth history. The "netmon " prefix
may be omitted. Without --older-than, --command removes every entry for
the command.

Examples:
  netmon audit prune --older-than 30d
  netmon audit prune --older-than 72h --command "telemetry watch"
  netmon audit prune --command "netmon telemetry export"`,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Remove entries older than this duration (e.g. 30d, 72h)")
	cmd.Flags().String("command", "", "Only remove entries for this command path (e.g. \"auth login\")")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThanRaw, _ := cmd.Flags().GetString("older-than")
	olderThanRaw = strings.TrimSpace(olderThanRaw)
	command, _ := cmd.Flags().GetString("command")
	command = commandPath(command)
	if olderThanRaw == "" && command == "" {
		return fmt.Errorf("--older-than or --command is required")
	}

	var olderThan time.Duration
	if olderThanRaw != "" {
		var err error
		olderThan, err = parseDuration(olderThanRaw)
		if err != nil {
			return err
		}
	}

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var removed int64
	if command != "" {
		removed, err = repo.PruneCommand(command, olderThan)
	} else {
		removed, err = repo.Prune(olderThan)
	}
	if err != nil {
		return err
	}

	noun := "entries"
	if removed == 1 {
		noun = "entry"
	}
	if command != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit %s for %q.\n", removed, noun, command)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit %s.\n", removed, noun)
	return nil
}

// commandPath turns "auth login" into "netmon auth login".
func commandPath(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || s == "netmon" || strings.HasPrefix(s, "netmon ") {
		return s
	}
	return "netmon " + s
}

func parseDuration(input string) (time.Duration, error) {
	if before, ok := strings.CutSuffix(input, "d"); ok {
		num := before
		days, err := strconv.Atoi(num)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
