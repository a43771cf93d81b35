package host

import (
	"context"
	"errors"
)

// ElementRef is a stable selector path addressing one element in the host
// page. Refs are produced by the page scanner and are only meaningful against
// the snapshot they were derived from; the host resolves them best-effort.
type ElementRef string

// Page is a serialized snapshot of the host application's current DOM.
type Page struct {
	Path string
	HTML string
}

// EventKind classifies page change notifications.
type EventKind string

const (
	EventNavigation EventKind = "navigation"
	EventMutation   EventKind = "mutation"
	EventControl    EventKind = "control"
)

// Event is a page change notification delivered by the host. Control events
// additionally carry the ID of the injected control that was clicked.
type Event struct {
	Kind    EventKind
	Path    string
	Control string
}

// Control describes an injected control button.
type Control struct {
	ID       string
	Label    string
	Anchor   string
	Position string
}

// ErrBridgeUnavailable indicates the browser-side shim could not be reached.
var ErrBridgeUnavailable = errors.New("host bridge unavailable")

// Bridge is the boundary to the live host page. Implementations deliver
// snapshots, dispatch element interactions, and surface page change events.
// The host DOM itself stays opaque behind this interface.
type Bridge interface {
	// Snapshot returns the current serialized page.
	Snapshot(ctx context.Context) (*Page, error)
	// Click dispatches a click on the referenced element. A ref that no
	// longer resolves is reported as an error; callers decide whether that
	// is fatal (it usually is not).
	Click(ctx context.Context, ref ElementRef) error
	// SetProgress updates the host's visual progress indicator (0-100).
	SetProgress(ctx context.Context, percent float64) error
	// Confirm presents a confirmation prompt and reports the user's choice.
	Confirm(ctx context.Context, prompt string) (bool, error)
	// MountControl inserts a control adjacent to its anchor element.
	MountControl(ctx context.Context, control Control) error
	// SetControlLabel updates the label of a mounted control.
	SetControlLabel(ctx context.Context, id, label string) error
	// SortSiblings reorders the children of the referenced element's parent
	// alphabetically by text content.
	SortSiblings(ctx context.Context, ref ElementRef) error
	// Events subscribes to page change notifications. The channel closes
	// when ctx is cancelled or the event stream ends.
	Events(ctx context.Context) (<-chan Event, error)
}
