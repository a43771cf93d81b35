package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stashbatch/internal/config"
	"stashbatch/internal/inject"
	"stashbatch/internal/journal"
	"stashbatch/internal/logging"
	"stashbatch/internal/notifications"
	"stashbatch/internal/preflight"
	"stashbatch/internal/runner"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	journal    *journal.Store
	controller *runner.Controller
	reconciler *inject.Reconciler
	notifier   notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	RunnerState  runner.State
	JournalPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *journal.Store, controller *runner.Controller, reconciler *inject.Reconciler, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || controller == nil || reconciler == nil || logger == nil {
		return nil, errors.New("daemon requires config, journal, controller, reconciler, and logger")
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		journal:    store,
		controller: controller,
		reconciler: reconciler,
		notifier:   notifier,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, verifies preflight checks and launches the
// watch loop. It returns once the daemon is serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stashbatch daemon instance is already running")
	}

	if results := preflight.RunAll(ctx, d.cfg); !preflight.AllPassed(results) {
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight failed: %s", summarizeFailures(results))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.reconciler.OnControl(d.handleControl)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.reconciler.Watch(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("watch loop ended", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("stashbatch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.controller.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("stashbatch daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		RunnerState:  d.controller.State(),
		JournalPath:  d.cfg.JournalPath(),
		LockFilePath: d.lockPath,
	}
}

// handleControl toggles the batch run on clicks of the injected control: a
// click while idle starts a run, a click during a run stops it.
func (d *Daemon) handleControl(ctx context.Context, id string) {
	if d.controller.State() == runner.StateRunning {
		d.logger.Info("stopping run on control click")
		d.controller.Stop()
		return
	}

	err := d.controller.Start(ctx)
	switch {
	case err == nil:
	case errors.Is(err, runner.ErrDeclined):
		d.logger.Info("run declined by user")
	case errors.Is(err, runner.ErrAlreadyRunning):
	default:
		d.logger.Error("run failed", logging.Error(err))
		if notifyErr := d.notifier.NotifyError(ctx, err, "batch run"); notifyErr != nil {
			d.logger.Warn("notification failed", logging.Error(notifyErr))
		}
	}
}

func summarizeFailures(results []preflight.Result) string {
	var parts []string
	for _, result := range results {
		if result.Passed {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return strings.Join(parts, "; ")
}
