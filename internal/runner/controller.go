package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"stashbatch/internal/config"
	"stashbatch/internal/host"
	"stashbatch/internal/inject"
	"stashbatch/internal/logging"
	"stashbatch/internal/notifications"
	"stashbatch/internal/page"
	"stashbatch/internal/resolver"
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

const (
	runningLabel = "Running..."
	startPrompt  = "Start batch run?"
)

var (
	// ErrAlreadyRunning is returned when Start is called during a run.
	ErrAlreadyRunning = errors.New("a run is already in progress")
	// ErrDeclined is returned when the user rejects the pre-run prompt.
	ErrDeclined = errors.New("run declined")
)

// Controller owns the two batch queues and the run state machine. A
// controller serves one run at a time; queues are rebuilt from a fresh page
// snapshot on every Start and forcibly cleared on Stop.
type Controller struct {
	bridge   host.Bridge
	catalog  resolver.Catalog
	recorder Recorder
	notifier notifications.Service
	logger   *slog.Logger

	clickDelay  time.Duration
	settleDelay time.Duration
	confirm     bool

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	creates []page.CreateAction
	links   []page.TagLink
}

// activeRun carries the counters of one run. Counters survive Stop so a
// cancelled run still records how far it got.
type activeRun struct {
	id        string
	total     int
	processed atomic.Int64
}

// New constructs a controller that records nothing and notifies per cfg.
func New(cfg *config.Config, bridge host.Bridge, catalog resolver.Catalog, logger *slog.Logger) *Controller {
	return NewWithRecorder(cfg, bridge, catalog, NopRecorder{}, notifications.NewService(cfg), logger)
}

// NewWithRecorder constructs a controller with explicit recorder and notifier.
func NewWithRecorder(cfg *config.Config, bridge host.Bridge, catalog resolver.Catalog, recorder Recorder, notifier notifications.Service, logger *slog.Logger) *Controller {
	return &Controller{
		bridge:      bridge,
		catalog:     catalog,
		recorder:    recorder,
		notifier:    notifier,
		logger:      logging.WithComponent(logger, "runner"),
		clickDelay:  time.Duration(cfg.Runner.ClickDelayMS) * time.Millisecond,
		settleDelay: time.Duration(cfg.Runner.SettleDelayMS) * time.Millisecond,
		confirm:     cfg.Runner.RequireConfirmation,
		state:       StateIdle,
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start executes one full batch run and blocks until it finishes. The run is
// built from a fresh snapshot; both queues drain concurrently. Start always
// ends with Stop, so the controller is idle and the queues are empty when it
// returns, whatever happened in between.
func (c *Controller) Start(ctx context.Context) error {
	if c.confirm {
		accepted, err := c.bridge.Confirm(ctx, startPrompt)
		if err != nil {
			return fmt.Errorf("confirm run: %w", err)
		}
		if !accepted {
			return ErrDeclined
		}
	}

	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.state = StateRunning
	c.cancel = cancel
	c.mu.Unlock()
	defer c.Stop()

	snapshot, err := c.bridge.Snapshot(runCtx)
	if err != nil {
		return fmt.Errorf("snapshot page: %w", err)
	}
	doc, err := page.Parse(snapshot)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	scan := page.Build(doc)

	c.mu.Lock()
	c.creates = append([]page.CreateAction(nil), scan.Creates...)
	c.links = append([]page.TagLink(nil), scan.Links...)
	c.mu.Unlock()

	active := &activeRun{id: uuid.NewString(), total: scan.Total()}
	logger := c.logger.With(logging.String(logging.FieldRunID, active.id))
	logger.Info("run started",
		logging.Int("creates", len(scan.Creates)),
		logging.Int("links", len(scan.Links)))
	started := time.Now()

	if err := c.recorder.RunStarted(runCtx, active.id, len(scan.Creates), len(scan.Links)); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
	if err := c.notifier.NotifyRunStarted(runCtx, len(scan.Creates), len(scan.Links)); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	c.reportProgress(runCtx, active)
	if err := c.bridge.SetControlLabel(runCtx, inject.ControlID, runningLabel); err != nil {
		logger.Debug("control label update failed", logging.Error(err))
	}

	run := resolver.New(c.catalog, logger)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.drainCreates(runCtx, active, logger)
	}()
	go func() {
		defer wg.Done()
		c.drainLinks(runCtx, active, run, logger)
	}()
	wg.Wait()

	status := StatusCompleted
	if runCtx.Err() != nil {
		status = StatusCancelled
	}
	processed, total := int(active.processed.Load()), active.total

	finishCtx := context.WithoutCancel(ctx)
	if err := c.recorder.RunFinished(finishCtx, active.id, processed, total, status); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
	if err := c.notifier.NotifyRunCompleted(finishCtx, processed, run.Failed(), time.Since(started)); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	logger.Info("run finished",
		logging.String("status", string(status)),
		logging.Int("processed", processed),
		logging.Int("total", total),
		logging.Int("unresolved", run.Failed()))
	return nil
}

// Stop ends the current run, cancels both drains and clears the queues. It is
// safe to call concurrently with a run and when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	cancel := c.cancel
	c.cancel = nil
	c.creates = nil
	c.links = nil
	if cancel != nil {
		cancel()
	}

	// The UI resets happen under the lock so a drain goroutine past its
	// state check cannot write a stale progress value after the reset.
	ctx := context.Background()
	if err := c.bridge.SetProgress(ctx, 0); err != nil {
		c.logger.Debug("progress reset failed", logging.Error(err))
	}
	if err := c.bridge.SetControlLabel(ctx, inject.ControlID, inject.ControlLabel); err != nil {
		c.logger.Debug("control label restore failed", logging.Error(err))
	}
	c.mu.Unlock()
}

func (c *Controller) drainCreates(ctx context.Context, active *activeRun, logger *slog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := c.nextCreate()
		if !ok {
			return
		}

		clickErr := c.bridge.Click(ctx, item.Ref)
		if clickErr != nil {
			logger.Warn("create click failed", logging.Error(clickErr))
		}
		if sleepWithContext(ctx, c.clickDelay) != nil {
			return
		}
		c.confirmModal(ctx, logger)

		if err := c.recorder.ActionCompleted(ctx, active.id, ActionCreate, string(item.Ref), clickErr); err != nil {
			logger.Warn("journal write failed", logging.Error(err))
		}
		c.advance(ctx, active)
		if sleepWithContext(ctx, c.clickDelay) != nil {
			return
		}
	}
}

// confirmModal clicks the save control of the modal the preceding click
// opened. A missing modal is silently skipped.
func (c *Controller) confirmModal(ctx context.Context, logger *slog.Logger) {
	snapshot, err := c.bridge.Snapshot(ctx)
	if err != nil {
		logger.Warn("modal snapshot failed", logging.Error(err))
		return
	}
	doc, err := page.Parse(snapshot)
	if err != nil {
		logger.Warn("modal parse failed", logging.Error(err))
		return
	}
	ref, ok := page.FindModalConfirm(doc)
	if !ok {
		return
	}
	if err := c.bridge.Click(ctx, ref); err != nil {
		logger.Warn("modal confirm click failed", logging.Error(err))
	}
}

func (c *Controller) drainLinks(ctx context.Context, active *activeRun, run *resolver.Resolver, logger *slog.Logger) {
	for _, name := range c.distinctLinkNames() {
		if ctx.Err() != nil {
			return
		}
		entityID, err := run.Resolve(ctx, name)
		if recErr := c.recorder.TagResolved(ctx, active.id, name, entityID, err); recErr != nil {
			logger.Warn("journal write failed", logging.Error(recErr))
		}
	}
	if sleepWithContext(ctx, c.settleDelay) != nil {
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := c.nextLink()
		if !ok {
			return
		}

		clickErr := c.bridge.Click(ctx, item.Ref)
		if clickErr != nil {
			logger.Warn("link click failed",
				logging.String(logging.FieldTag, item.Name),
				logging.Error(clickErr))
		}
		if err := c.recorder.ActionCompleted(ctx, active.id, ActionLink, string(item.Ref), clickErr); err != nil {
			logger.Warn("journal write failed", logging.Error(err))
		}
		c.advance(ctx, active)
		if sleepWithContext(ctx, c.clickDelay) != nil {
			return
		}
	}
}

func (c *Controller) nextCreate() (page.CreateAction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning || len(c.creates) == 0 {
		return page.CreateAction{}, false
	}
	item := c.creates[0]
	c.creates = c.creates[1:]
	return item, true
}

func (c *Controller) nextLink() (page.TagLink, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning || len(c.links) == 0 {
		return page.TagLink{}, false
	}
	item := c.links[0]
	c.links = c.links[1:]
	return item, true
}

// distinctLinkNames returns the non-empty link names in first-seen order.
func (c *Controller) distinctLinkNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{}, len(c.links))
	var names []string
	for _, link := range c.links {
		if link.Name == "" {
			continue
		}
		if _, ok := seen[link.Name]; ok {
			continue
		}
		seen[link.Name] = struct{}{}
		names = append(names, link.Name)
	}
	return names
}

// advance counts one processed item and pushes combined progress to the host.
// Each item is dequeued exactly once, so processed can never pass total.
func (c *Controller) advance(ctx context.Context, active *activeRun) {
	active.processed.Add(1)
	c.reportProgress(ctx, active)
}

// reportProgress pushes combined progress while the run is live. The state
// check and the bridge call share the lock with Stop, so no report can land
// after Stop's reset.
func (c *Controller) reportProgress(ctx context.Context, active *activeRun) {
	percent := 0.0
	if active.total > 0 {
		percent = float64(active.processed.Load()) / float64(active.total) * 100
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	if err := c.bridge.SetProgress(ctx, percent); err != nil {
		c.logger.Debug("progress update failed", logging.Error(err))
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
