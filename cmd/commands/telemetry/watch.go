package telemetry

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netmonlabs/netmon/internal/aggregate"
	"netmonlabs/netmon/internal/app"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func WatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll telemetry and print a line per snapshot",
		Long: `Poll the telemetry endpoint on the configured interval (poll-interval,
20s by default) and print a summary line for every snapshot: matching
rows, and the newest status, anomaly and performance values. Failed polls
are logged and the previous snapshot is kept.

Examples:
  netmon telemetry watch
  netmon telemetry watch --search router --rows
  netmon telemetry watch --count 1`,
		RunE:         runWatch,
		SilenceUsage: true,
	}

	cmd.Flags().String("search", "", "Only count readings containing this text")
	cmd.Flags().Bool("rows", false, "Print the matching rows after each summary")
	cmd.Flags().Int("count", 0, "Exit after this many snapshots (0 runs until interrupted)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	rows, _ := cmd.Flags().GetBool("rows")
	count, _ := cmd.Flags().GetInt("count")

	a, err := loadApp(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Watch(ctx, a, cmd.OutOrStdout(), WatchOptions{Search: search, Rows: rows, Count: count})
}

// WatchOptions configures Watch.
type WatchOptions struct {
	Search string
	Rows   bool
	// Count stops after this many snapshots; zero runs until ctx is done.
	Count int
}

// Watch polls until ctx is cancelled (or opts.Count snapshots were printed)
// and writes a summary of every snapshot to w.
func Watch(ctx context.Context, a *app.App, w io.Writer, opts WatchOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := a.NewPoller()
	p.Start(ctx)

	g, ctx := errgroup.WithContext(ctx)

	// Printer: the only writer to w.
	g.Go(func() error {
		defer cancel()
		var memo aggregate.Memo
		printed := 0
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-p.Updates():
				res := memo.Get(snap.Seq, snap.Records, opts.Search)
				printSummary(w, snap.FetchedAt.Local().Format(time.TimeOnly), len(snap.Records), res)
				if opts.Rows && len(res.Rows) > 0 {
					if err := printRows(w, res.Rows); err != nil {
						return err
					}
				}
				printed++
				if opts.Count > 0 && printed >= opts.Count {
					return nil
				}
			}
		}
	})

	// Stopper: waits out the in-flight poll once the printer is done.
	g.Go(func() error {
		<-ctx.Done()
		p.Stop()
		return nil
	})

	return g.Wait()
}
