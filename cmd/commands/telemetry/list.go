package telemetry

import (
	"fmt"

	"netmonlabs/netmon/internal/aggregate"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the current telemetry readings",
		Long: `Fetch one telemetry snapshot and list the readings that match --search.

A reading matches when the search term appears, case-insensitively, in its
device name, IP address, location, value, anomaly flag, action or
timestamp.

Examples:
  netmon telemetry list
  netmon telemetry list --search omsk
  netmon telemetry list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().String("search", "", "Only show readings containing this text")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	a, err := loadApp(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Client.Telemetry(cmd.Context())
	if err != nil {
		return err
	}
	rows := aggregate.Filter(records, search)

	if output == "json" {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No telemetry found.")
		return nil
	}
	return printRows(cmd.OutOrStdout(), rows)
}
