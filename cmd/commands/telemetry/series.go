package telemetry

import (
	"fmt"

	"netmonlabs/netmon/internal/aggregate"

	"github.com/spf13/cobra"
)

func SeriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print the status, anomaly and performance series",
		Long: `Fetch one telemetry snapshot and print the per-second series the
dashboard charts: status (rounded mean), anomalies (count above 90) and
performance (maximum). Series always cover the whole snapshot.

Examples:
  netmon telemetry series
  netmon telemetry series -o json`,
		RunE:         runSeries,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runSeries(cmd *cobra.Command, args []string) error {
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
	res := aggregate.Compute(records, "")

	if output == "json" {
		return printJSON(cmd.OutOrStdout(), seriesJSON{
			Status:      res.Status,
			Anomalies:   res.Anomalies,
			Performance: res.Performance,
		})
	}
	if len(res.Status) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No timestamped readings.")
		return nil
	}
	return printSeries(cmd.OutOrStdout(), res)
}
