package simulate

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netmonlabs/netmon/internal/config"
	"netmonlabs/netmon/internal/logging"
	"netmonlabs/netmon/internal/simulator"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a local backend that serves generated telemetry",
		Long: `Run an in-memory stand-in for the monitoring backend.

It serves POST /register, POST /login and GET/POST /operator/telemetry and
ingests a batch of random device readings every --interval. Accounts and
readings are lost when it exits.

Point the client at it with:
  netmon config set api-url http://localhost:8080

Examples:
  netmon simulate
  netmon simulate --addr :9090 --interval 5s --batch 20
  netmon simulate --min-value 80 --max-value 100   # mostly warnings and anomalies`,
		RunE:         runSimulate,
		SilenceUsage: true,
	}

	cmd.Flags().String("addr", simulator.DefaultAddr, "Listen address")
	cmd.Flags().Duration("interval", simulator.DefaultInterval, "How often to generate a batch of readings")
	cmd.Flags().Int("batch", simulator.DefaultBatch, "Readings per batch")
	cmd.Flags().Int("max-records", simulator.DefaultMaxRecords, "Readings kept in memory")
	cmd.Flags().String("secret", simulator.DefaultSecret, "HMAC secret used to sign session tokens")
	cmd.Flags().Float64("min-value", simulator.DefaultMinValue, "Lowest generated metric value")
	cmd.Flags().Float64("max-value", simulator.DefaultMaxValue, "Highest generated metric value (exclusive)")
	cmd.Flags().Int("bcrypt-cost", simulator.DefaultBcryptCost, "bcrypt cost for stored passwords")

	return cmd
}

// simulatorConfig reads the flags into a simulator.Config.
func simulatorConfig(cmd *cobra.Command) (simulator.Config, error) {
	addr, _ := cmd.Flags().GetString("addr")
	interval, _ := cmd.Flags().GetDuration("interval")
	batch, _ := cmd.Flags().GetInt("batch")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	secret, _ := cmd.Flags().GetString("secret")
	cost, _ := cmd.Flags().GetInt("bcrypt-cost")
	minValue, _ := cmd.Flags().GetFloat64("min-value")
	maxValue, _ := cmd.Flags().GetFloat64("max-value")

	switch {
	case interval < time.Second:
		return simulator.Config{}, fmt.Errorf("--interval must be at least 1s")
	case batch <= 0:
		return simulator.Config{}, fmt.Errorf("--batch must be greater than 0")
	case maxRecords <= 0:
		return simulator.Config{}, fmt.Errorf("--max-records must be greater than 0")
	case secret == "":
		return simulator.Config{}, fmt.Errorf("--secret cannot be empty")
	case maxValue <= minValue:
		return simulator.Config{}, fmt.Errorf("--max-value must be greater than --min-value")
	}

	return simulator.Config{
		Addr:       addr,
		Interval:   interval,
		Batch:      batch,
		MaxRecords: maxRecords,
		Secret:     secret,
		BcryptCost: cost,
		MinValue:   minValue,
		MaxValue:   maxValue,
	}, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := simulatorConfig(cmd)
	if err != nil {
		return err
	}

	settings, err := config.Resolve()
	if err != nil {
		return err
	}
	cfg.Logger = logging.New(cmd.ErrOrStderr(), settings.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return simulator.New(cfg).Run(ctx)
}
