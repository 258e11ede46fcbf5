package dashboard

import (
	"os"
	"os/signal"
	"syscall"

	"netmonlabs/netmon/cmd/commands/telemetry"
	"netmonlabs/netmon/internal/app"
	"netmonlabs/netmon/internal/auditlog"
	"netmonlabs/netmon/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isInteractive is replaced in tests.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live telemetry dashboard",
		Long: `Open a full-screen dashboard that polls the telemetry endpoint and shows
the readings as a searchable table next to the device status, anomaly and
performance charts.

Keys:
  /        search rows (esc clears)
  r        refresh now
  j/k      move the selection
  q        quit

When stdout is not a terminal the dashboard falls back to
'netmon telemetry watch' output. Logs are written to netmon.log next to the
config file.`,
		RunE:         runDashboard,
		SilenceUsage: true,
	}

	cmd.Flags().String("search", "", "Initial search term")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !isInteractive() {
		a, err := app.Load(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		setBackend(cmd, a)
		return telemetry.Watch(ctx, a, cmd.OutOrStdout(), telemetry.WatchOptions{Search: search})
	}

	a, err := app.Load(nil)
	if err != nil {
		return err
	}
	defer a.Close()
	setBackend(cmd, a)

	return tui.RunDashboard(ctx, a.NewPoller(), tui.DashboardOptions{
		Backend: a.Client.BaseURL(),
		Search:  search,
	})
}

func setBackend(cmd *cobra.Command, a *app.App) {
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Backend: a.Client.BaseURL()}))
}
