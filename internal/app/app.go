// Package app wires the resolved settings into the clients, services and
// logger a command needs.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"netmonlabs/netmon/internal/api"
	"netmonlabs/netmon/internal/config"
	"netmonlabs/netmon/internal/logging"
	"netmonlabs/netmon/internal/poller"
	"netmonlabs/netmon/internal/services/auth"
)

// App holds the per-invocation dependencies.
type App struct {
	Settings *config.Settings
	Client   *api.Client
	Auth     *auth.Service
	Logger   *slog.Logger

	closeLog func() error
}

// Load resolves the configuration and builds an App. Logs go to logOut; a
// nil logOut sends them to the log file next to the config file, which is
// what full-screen commands want.
func Load(logOut io.Writer) (*App, error) {
	settings, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	return New(settings, logOut)
}

// New builds an App from already resolved settings.
func New(settings *config.Settings, logOut io.Writer) (*App, error) {
	a := &App{Settings: settings}

	if logOut != nil {
		a.Logger = logging.New(logOut, settings.LogLevel)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		logger, closeLog, err := logging.OpenFile(dir, settings.LogLevel)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
		a.closeLog = closeLog
	}

	a.Client = api.NewClient(settings.APIURL, api.WithTimeout(settings.RequestTimeout))
	a.Auth = auth.NewService(a.Client, auth.DefaultStore())
	return a, nil
}

// NewPoller returns a telemetry poller using the configured interval and
// request timeout. The caller starts and stops it.
func (a *App) NewPoller() *poller.Poller {
	return poller.New(a.Client.Telemetry,
		poller.WithInterval(a.Settings.PollInterval),
		poller.WithRequestTimeout(a.Settings.RequestTimeout),
		poller.WithLogger(a.Logger),
	)
}

// Close releases the log file, if one was opened.
func (a *App) Close() error {
	if a.closeLog == nil {
		return nil
	}
	if err := a.closeLog(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
