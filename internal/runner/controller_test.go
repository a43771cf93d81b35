package runner_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"stashbatch/internal/logging"
	"stashbatch/internal/notifications"
	"stashbatch/internal/runner"
	"stashbatch/internal/testsupport"
)

const runPageHTML = `<html><body><div class="tagger-container">
<div class="input-group"><span class="react-select__placeholder">Select...</span><button class="btn-primary">Create</button></div>
<div class="input-group"><span class="react-select__placeholder">Select...</span><button class="btn-primary">Create</button></div>
<div class="input-group"><span class="react-select__placeholder">Select...</span><button class="btn-primary">Create</button></div>
<span class="tag-item">blonde<button class="btn-add">+</button></span>
<span class="tag-item">blonde<button class="btn-add">+</button></span>
</div>
<div class="modal show"><div class="modal-footer"><button class="btn-primary">Save</button></div></div>
</body></html>`

type fakeCatalog struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (c *fakeCatalog) FindOrCreateTag(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
	if err := c.fail[name]; err != nil {
		return "", err
	}
	return name + "-id", nil
}

func (c *fakeCatalog) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type recordingJournal struct {
	mu          sync.Mutex
	started     int
	actions     []runner.ActionKind
	resolutions map[string]error
	finished    []runner.Status
	processed   int
	total       int
}

func newRecordingJournal() *recordingJournal {
	return &recordingJournal{resolutions: make(map[string]error)}
}

func (r *recordingJournal) RunStarted(ctx context.Context, runID string, creates, links int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return nil
}

func (r *recordingJournal) ActionCompleted(ctx context.Context, runID string, kind runner.ActionKind, ref string, actionErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, kind)
	return nil
}

func (r *recordingJournal) TagResolved(ctx context.Context, runID, name, entityID string, resolveErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions[name] = resolveErr
	return nil
}

func (r *recordingJournal) RunFinished(ctx context.Context, runID string, processed, total int, status runner.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, status)
	r.processed = processed
	r.total = total
	return nil
}

func noopNotifier(t *testing.T) notifications.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return notifications.NewService(cfg)
}

func countKinds(actions []runner.ActionKind, kind runner.ActionKind) int {
	n := 0
	for _, a := range actions {
		if a == kind {
			n++
		}
	}
	return n
}

func TestRunProcessesCreatesAndLinks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	bridge := testsupport.NewFakeBridge(runPageHTML)
	catalog := &fakeCatalog{}
	journal := newRecordingJournal()
	ctrl := runner.NewWithRecorder(cfg, bridge, catalog, journal, noopNotifier(t), logging.NewNop())

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 3 create clicks, 3 modal confirms, 2 link clicks.
	if clicks := bridge.Clicks(); len(clicks) != 8 {
		t.Fatalf("expected 8 clicks, got %d: %v", len(clicks), clicks)
	}
	if catalog.callCount() != 1 {
		t.Fatalf("two links sharing a name must resolve once, got %v", catalog.calls)
	}
	if got := ctrl.State(); got != runner.StateIdle {
		t.Fatalf("state after run = %q, want idle", got)
	}

	progress := bridge.Progress()
	sawFull := false
	for _, p := range progress {
		if p > 100 {
			t.Fatalf("progress exceeded 100: %v", progress)
		}
		if p == 100 {
			sawFull = true
		}
	}
	if !sawFull {
		t.Fatalf("run never reported 100%%: %v", progress)
	}
	if progress[len(progress)-1] != 0 {
		t.Fatalf("stop must reset progress, got %v", progress)
	}

	if journal.started != 1 || len(journal.finished) != 1 {
		t.Fatalf("journal run records off: started=%d finished=%v", journal.started, journal.finished)
	}
	if journal.finished[0] != runner.StatusCompleted {
		t.Fatalf("status = %q, want completed", journal.finished[0])
	}
	if journal.processed != 5 || journal.total != 5 {
		t.Fatalf("journal counters: processed=%d total=%d", journal.processed, journal.total)
	}
	if got := countKinds(journal.actions, runner.ActionCreate); got != 3 {
		t.Fatalf("recorded creates = %d, want 3", got)
	}
	if got := countKinds(journal.actions, runner.ActionLink); got != 2 {
		t.Fatalf("recorded links = %d, want 2", got)
	}
}

func TestNamelessLinkClickedNotResolved(t *testing.T) {
	const html = `<html><body><div class="tagger-container">
<span class="tag-item"><button class="btn-add">+</button></span>
</div></body></html>`

	cfg := testsupport.NewConfig(t)
	bridge := testsupport.NewFakeBridge(html)
	catalog := &fakeCatalog{}
	ctrl := runner.New(cfg, bridge, catalog, logging.NewNop())

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if catalog.callCount() != 0 {
		t.Fatalf("nameless link must not resolve, got %v", catalog.calls)
	}
	if len(bridge.Clicks()) != 1 {
		t.Fatalf("nameless link must still be clicked, got %v", bridge.Clicks())
	}
}

func TestResolveFailureDoesNotBlockClicks(t *testing.T) {
	const html = `<html><body><div class="tagger-container">
<span class="tag-item">blonde<button class="btn-add">+</button></span>
<span class="tag-item">tattoo<button class="btn-add">+</button></span>
</div></body></html>`

	cfg := testsupport.NewConfig(t)
	bridge := testsupport.NewFakeBridge(html)
	boom := errors.New("catalog down")
	catalog := &fakeCatalog{fail: map[string]error{"blonde": boom}}
	journal := newRecordingJournal()
	ctrl := runner.NewWithRecorder(cfg, bridge, catalog, journal, noopNotifier(t), logging.NewNop())

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if len(bridge.Clicks()) != 2 {
		t.Fatalf("both links must be clicked despite the failure, got %v", bridge.Clicks())
	}
	if catalog.callCount() != 2 {
		t.Fatalf("both names must be attempted, got %v", catalog.calls)
	}
	if err := journal.resolutions["blonde"]; !errors.Is(err, boom) {
		t.Fatalf("failed resolution not recorded: %v", journal.resolutions)
	}
	if err := journal.resolutions["tattoo"]; err != nil {
		t.Fatalf("successful resolution recorded an error: %v", err)
	}
}

func TestDeclinedConfirmationAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConfirmation())
	bridge := testsupport.NewFakeBridge(runPageHTML)
	bridge.SetConfirmAnswer(false)
	ctrl := runner.New(cfg, bridge, &fakeCatalog{}, logging.NewNop())

	err := ctrl.Start(context.Background())
	if !errors.Is(err, runner.ErrDeclined) {
		t.Fatalf("Start = %v, want ErrDeclined", err)
	}
	if len(bridge.Clicks()) != 0 {
		t.Fatal("declined run must not click anything")
	}
	if ctrl.State() != runner.StateIdle {
		t.Fatal("declined run must leave the controller idle")
	}
	prompts := bridge.Prompts()
	if len(prompts) != 1 || !strings.Contains(prompts[0], "batch run") {
		t.Fatalf("unexpected prompts: %v", prompts)
	}
}

func TestStartWhileRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Runner.ClickDelayMS = 20
	bridge := testsupport.NewFakeBridge(runPageHTML)
	ctrl := runner.New(cfg, bridge, &fakeCatalog{}, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Start(context.Background())
	}()

	deadline := time.After(2 * time.Second)
	for ctrl.State() != runner.StateRunning {
		select {
		case <-deadline:
			t.Fatal("run never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := ctrl.Start(context.Background()); !errors.Is(err, runner.ErrAlreadyRunning) {
		t.Fatalf("second Start = %v, want ErrAlreadyRunning", err)
	}

	ctrl.Stop()
	if err := <-done; err != nil {
		t.Fatalf("first Start returned %v", err)
	}
}

func TestStopMidRunClearsQueuesAndRestartRebuilds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Runner.ClickDelayMS = 20
	bridge := testsupport.NewFakeBridge(runPageHTML)
	journal := newRecordingJournal()
	ctrl := runner.NewWithRecorder(cfg, bridge, &fakeCatalog{}, journal, noopNotifier(t), logging.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Start(context.Background())
	}()

	deadline := time.After(2 * time.Second)
	for len(bridge.Clicks()) == 0 {
		select {
		case <-deadline:
			t.Fatal("run made no progress")
		case <-time.After(time.Millisecond):
		}
	}

	ctrl.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Start returned %v", err)
	}
	if ctrl.State() != runner.StateIdle {
		t.Fatal("controller must be idle after stop")
	}
	if journal.finished[len(journal.finished)-1] != runner.StatusCancelled {
		t.Fatalf("stopped run status = %q, want cancelled", journal.finished[0])
	}

	progress := bridge.Progress()
	if progress[len(progress)-1] != 0 {
		t.Fatalf("stop must reset progress, got %v", progress)
	}

	// A fresh start rebuilds from a new snapshot and runs to completion.
	before := len(bridge.Clicks())
	ctrlFast := runner.NewWithRecorder(testsupport.NewConfig(t), bridge, &fakeCatalog{}, journal, noopNotifier(t), logging.NewNop())
	if err := ctrlFast.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if got := len(bridge.Clicks()) - before; got != 8 {
		t.Fatalf("restart processed %d clicks, want full 8", got)
	}
}
