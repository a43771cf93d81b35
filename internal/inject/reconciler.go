package inject

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stashbatch/internal/config"
	"stashbatch/internal/host"
	"stashbatch/internal/logging"
	"stashbatch/internal/page"
)

const (
	// ControlID is the DOM id of the injected batch-apply control.
	ControlID = "stashbatch-apply"
	// ControlLabel is the control's resting label.
	ControlLabel = "Batch Apply"
	// AnchorText is the visible text of the host button the control is
	// mounted next to. The anchor only exists on the tagger page, so its
	// absence means the control is not wanted there.
	AnchorText = "Scrape All"
)

// Reconciler keeps the batch-apply control present on pages that carry its
// anchor. Reconcile is idempotent; Watch reruns it on page change events.
type Reconciler struct {
	bridge    host.Bridge
	logger    *slog.Logger
	debounce  time.Duration
	position  string
	onControl func(context.Context, string)
}

// NewReconciler builds a reconciler from the watch and tagger sections of cfg.
func NewReconciler(cfg *config.Config, bridge host.Bridge, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		bridge:   bridge,
		logger:   logging.WithComponent(logger, "inject"),
		debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		position: cfg.Tagger.Position,
	}
}

// OnControl registers a handler for clicks on the injected control. The
// handler runs on its own goroutine so a long batch run does not stall the
// reconcile loop. Must be set before Watch.
func (r *Reconciler) OnControl(handler func(context.Context, string)) {
	r.onControl = handler
}

// Reconcile mounts the control next to its anchor when the anchor is present
// and the control is not. A page without the anchor is left untouched. Calling
// Reconcile on a page that already carries the control is a no-op.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	snapshot, err := r.bridge.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot page: %w", err)
	}
	doc, err := page.Parse(snapshot)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	if page.HasControl(doc, ControlID) {
		return nil
	}
	if !page.HasAnchor(doc, AnchorText) {
		return nil
	}

	control := host.Control{
		ID:       ControlID,
		Label:    ControlLabel,
		Anchor:   AnchorText,
		Position: r.position,
	}
	if err := r.bridge.MountControl(ctx, control); err != nil {
		return fmt.Errorf("mount control: %w", err)
	}
	if err := r.bridge.SortSiblings(ctx, host.ElementRef("#"+ControlID)); err != nil {
		return fmt.Errorf("sort controls: %w", err)
	}
	r.logger.Info("control mounted", logging.String("page", snapshot.Path))
	return nil
}

// Watch subscribes to page change events and reconciles after each burst,
// collapsing events that arrive within the debounce window into one pass.
// It blocks until ctx is cancelled or the event stream ends.
func (r *Reconciler) Watch(ctx context.Context) error {
	events, err := r.bridge.Events(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to events: %w", err)
	}

	if err := r.Reconcile(ctx); err != nil {
		r.logger.Warn("initial reconcile failed", logging.Error(err))
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if event.Kind == host.EventControl {
				if r.onControl != nil && event.Control == ControlID {
					go r.onControl(ctx, event.Control)
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(r.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			if err := r.Reconcile(ctx); err != nil {
				r.logger.Warn("reconcile failed", logging.Error(err))
			}
		}
	}
}
