package testsupport

import (
	"context"
	"sync"

	"stashbatch/internal/host"
)

// FakeBridge is an in-memory host.Bridge. It serves a configurable page
// snapshot, records every interaction, and lets tests push page events.
// All methods are safe for concurrent use.
type FakeBridge struct {
	mu sync.Mutex

	page        *host.Page
	snapshotErr error
	clickErrs   map[host.ElementRef]error
	answer      bool

	clicks   []host.ElementRef
	progress []float64
	prompts  []string
	controls []host.Control
	labels   []string
	sorts    []host.ElementRef

	events chan host.Event
}

// NewFakeBridge returns a bridge serving html at the root path. Confirmations
// are accepted until SetConfirmAnswer says otherwise.
func NewFakeBridge(html string) *FakeBridge {
	return &FakeBridge{
		page:      &host.Page{Path: "/", HTML: html},
		clickErrs: make(map[host.ElementRef]error),
		answer:    true,
		events:    make(chan host.Event, 16),
	}
}

// SetPage replaces the snapshot served by subsequent Snapshot calls.
func (b *FakeBridge) SetPage(path, html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = &host.Page{Path: path, HTML: html}
}

// SetSnapshotError makes Snapshot fail with err until cleared with nil.
func (b *FakeBridge) SetSnapshotError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshotErr = err
}

// SetClickError makes clicks on ref fail with err.
func (b *FakeBridge) SetClickError(ref host.ElementRef, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clickErrs[ref] = err
}

// SetConfirmAnswer fixes the reply for subsequent Confirm calls.
func (b *FakeBridge) SetConfirmAnswer(accepted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answer = accepted
}

// Emit delivers a page event to the subscriber.
func (b *FakeBridge) Emit(event host.Event) {
	b.events <- event
}

func (b *FakeBridge) Snapshot(ctx context.Context) (*host.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snapshotErr != nil {
		return nil, b.snapshotErr
	}
	page := *b.page
	return &page, nil
}

func (b *FakeBridge) Click(ctx context.Context, ref host.ElementRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.clickErrs[ref]; err != nil {
		return err
	}
	b.clicks = append(b.clicks, ref)
	return nil
}

func (b *FakeBridge) SetProgress(ctx context.Context, percent float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = append(b.progress, percent)
	return nil
}

func (b *FakeBridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, prompt)
	return b.answer, nil
}

func (b *FakeBridge) MountControl(ctx context.Context, control host.Control) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.controls = append(b.controls, control)
	return nil
}

func (b *FakeBridge) SetControlLabel(ctx context.Context, id, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labels = append(b.labels, id+": "+label)
	return nil
}

func (b *FakeBridge) SortSiblings(ctx context.Context, ref host.ElementRef) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sorts = append(b.sorts, ref)
	return nil
}

func (b *FakeBridge) Events(ctx context.Context) (<-chan host.Event, error) {
	out := make(chan host.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-b.events:
				select {
				case <-ctx.Done():
					return
				case out <- event:
				}
			}
		}
	}()
	return out, nil
}

// Clicks returns the refs clicked so far in order.
func (b *FakeBridge) Clicks() []host.ElementRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]host.ElementRef, len(b.clicks))
	copy(out, b.clicks)
	return out
}

// Progress returns every reported progress value in order.
func (b *FakeBridge) Progress() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float64, len(b.progress))
	copy(out, b.progress)
	return out
}

// Prompts returns the confirmation prompts presented so far.
func (b *FakeBridge) Prompts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.prompts))
	copy(out, b.prompts)
	return out
}

// Controls returns the controls mounted so far.
func (b *FakeBridge) Controls() []host.Control {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]host.Control, len(b.controls))
	copy(out, b.controls)
	return out
}

// Labels returns every control label update as "id: label".
func (b *FakeBridge) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

// Sorts returns the refs passed to SortSiblings.
func (b *FakeBridge) Sorts() []host.ElementRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]host.ElementRef, len(b.sorts))
	copy(out, b.sorts)
	return out
}
