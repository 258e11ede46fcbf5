package telemetry

import (
	"fmt"
	"strings"

	"netmonlabs/netmon/internal/aggregate"
	"netmonlabs/netmon/internal/auditlog"
	"netmonlabs/netmon/internal/chartexport"

	"github.com/spf13/cobra"
)

func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the telemetry series to a PNG chart",
		Long: `Fetch one telemetry snapshot and render the status, anomaly and
performance series to a PNG file.

Examples:
  netmon telemetry export --out telemetry.png
  netmon telemetry export --out report.png --title "NOC, night shift" --width 1600`,
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().String("out", "", "Output PNG path (required)")
	cmd.Flags().String("title", "", "Chart title")
	cmd.Flags().Int("width", chartexport.DefaultWidth, "Image width in pixels")
	cmd.Flags().Int("height", chartexport.DefaultHeight, "Image height in pixels")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	title, _ := cmd.Flags().GetString("title")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	out = strings.TrimSpace(out)
	if out == "" {
		return fmt.Errorf("--out is required")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("width and height must be greater than 0")
	}

	a, err := loadApp(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Subject: out}))

	records, err := a.Client.Telemetry(cmd.Context())
	if err != nil {
		return err
	}
	res := aggregate.Compute(records, "")

	if err := chartexport.WriteFile(out, res, chartexport.Options{Title: title, Width: width, Height: height}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d points to %s\n", len(res.Status), out)
	return nil
}
