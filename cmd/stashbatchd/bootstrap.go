package main

import (
	"fmt"
	"log/slog"

	"stashbatch/internal/config"
	"stashbatch/internal/daemon"
	"stashbatch/internal/host"
	"stashbatch/internal/inject"
	"stashbatch/internal/journal"
	"stashbatch/internal/notifications"
	"stashbatch/internal/runner"
	"stashbatch/internal/stash"
)

// buildDaemon wires the journal, bridge, catalog client, runner and
// reconciler into a daemon instance.
func buildDaemon(cfg *config.Config, store *journal.Store, logger *slog.Logger) (*daemon.Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, fmt.Errorf("daemon bootstrap requires config, journal, and logger")
	}

	bridge := host.NewHTTPBridge(cfg, logger)
	catalog := stash.NewClient(cfg, logger)
	notifier := notifications.NewService(cfg)
	controller := runner.NewWithRecorder(cfg, bridge, catalog, store, notifier, logger)
	reconciler := inject.NewReconciler(cfg, bridge, logger)

	return daemon.New(cfg, store, controller, reconciler, notifier, logger)
}
