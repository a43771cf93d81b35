package runner

import "context"

// ActionKind labels a recorded queue action.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionLink   ActionKind = "link"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Recorder receives run lifecycle events for persistence. The journal store
// implements it; tests use in-memory fakes. Recorder failures never stop a
// run, they are logged and dropped.
type Recorder interface {
	RunStarted(ctx context.Context, runID string, creates, links int) error
	ActionCompleted(ctx context.Context, runID string, kind ActionKind, ref string, actionErr error) error
	TagResolved(ctx context.Context, runID, name, entityID string, resolveErr error) error
	RunFinished(ctx context.Context, runID string, processed, total int, status Status) error
}

// NopRecorder discards all run events.
type NopRecorder struct{}

func (NopRecorder) RunStarted(context.Context, string, int, int) error { return nil }
func (NopRecorder) ActionCompleted(context.Context, string, ActionKind, string, error) error {
	return nil
}
func (NopRecorder) TagResolved(context.Context, string, string, string, error) error { return nil }
func (NopRecorder) RunFinished(context.Context, string, int, int, Status) error      { return nil }
