package telemetry

import (
	"io"

	"netmonlabs/netmon/internal/app"
	"netmonlabs/netmon/internal/auditlog"

	"github.com/spf13/cobra"
)

// NewCommand returns the "telemetry" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Fetch and summarise device telemetry",
		Long: `Fetch device telemetry from the backend.

Readings are grouped by the second they were recorded at. Three series are
derived from each snapshot: the rounded mean value (status), the number of
readings above 90 (anomalies) and the highest value (performance). Only the
last 50 seconds seen are kept.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(SeriesCommand())
	cmd.AddCommand(WatchCommand())
	cmd.AddCommand(ExportCommand())

	return cmd
}

// loadApp builds the command dependencies with logs going to logOut and
// records the backend for the audit trail.
func loadApp(cmd *cobra.Command, logOut io.Writer) (*app.App, error) {
	a, err := app.Load(logOut)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Backend: a.Client.BaseURL()}))
	return a, nil
}
