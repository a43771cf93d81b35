package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stashbatch/internal/runner"
)

// ErrNotFound indicates no run matches the requested identifier.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguousID indicates a run ID prefix matches more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id prefix")

// Run is one recorded batch run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Creates    int
	Links      int
	Processed  int
	Total      int
	Status     string
}

// Finished reports whether the run has a terminal status.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Action is one recorded queue action.
type Action struct {
	Kind      string
	Ref       string
	Error     string
	CreatedAt time.Time
}

// Resolution is one recorded tag resolution outcome.
type Resolution struct {
	Name      string
	EntityID  string
	Error     string
	CreatedAt time.Time
}

// RunDetail bundles a run with its recorded actions and resolutions.
type RunDetail struct {
	Run         Run
	Actions     []Action
	Resolutions []Resolution
}

const timeLayout = time.RFC3339Nano

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// RunStarted records a new run in the running state.
func (s *Store) RunStarted(ctx context.Context, runID string, creates, links int) error {
	return s.execWithRetry(ctx,
		`INSERT INTO runs (id, started_at, creates, links, total, status)
		 VALUES (?, ?, ?, ?, ?, 'running')`,
		runID, now(), creates, links, creates+links)
}

// ActionCompleted records the outcome of one queue action.
func (s *Store) ActionCompleted(ctx context.Context, runID string, kind runner.ActionKind, ref string, actionErr error) error {
	return s.execWithRetry(ctx,
		`INSERT INTO actions (run_id, kind, ref, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(kind), ref, errText(actionErr), now())
}

// TagResolved records one tag resolution outcome.
func (s *Store) TagResolved(ctx context.Context, runID, name, entityID string, resolveErr error) error {
	return s.execWithRetry(ctx,
		`INSERT INTO resolutions (run_id, name, entity_id, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, name, entityID, errText(resolveErr), now())
}

// RunFinished stamps the run with its terminal status and final counters.
func (s *Store) RunFinished(ctx context.Context, runID string, processed, total int, status runner.Status) error {
	return s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, total = ?, status = ? WHERE id = ?`,
		now(), processed, total, string(status), runID)
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns
// all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, started_at, COALESCE(finished_at, ''), creates, links, processed, total, status
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &started, &finished, &run.Creates, &run.Links, &run.Processed, &run.Total, &run.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its actions and resolutions. The identifier may
// be a unique prefix of the run ID; a prefix matching more than one run is
// an error.
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), creates, links, processed, total, status
		 FROM runs WHERE id = ? OR id LIKE ? || '%' LIMIT 2`,
		id, id)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &started, &finished, &run.Creates, &run.Links, &run.Processed, &run.Total, &run.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
	run := matches[0]

	detail := &RunDetail{Run: run}

	actionRows, err := s.db.QueryContext(ctx,
		`SELECT kind, ref, COALESCE(error, ''), created_at FROM actions WHERE run_id = ? ORDER BY id`,
		run.ID)
	if err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}
	defer actionRows.Close()
	for actionRows.Next() {
		var action Action
		var created string
		if err := actionRows.Scan(&action.Kind, &action.Ref, &action.Error, &created); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		action.CreatedAt = parseTime(created)
		detail.Actions = append(detail.Actions, action)
	}
	if err := actionRows.Err(); err != nil {
		return nil, err
	}

	resolutionRows, err := s.db.QueryContext(ctx,
		`SELECT name, COALESCE(entity_id, ''), COALESCE(error, ''), created_at FROM resolutions WHERE run_id = ? ORDER BY id`,
		run.ID)
	if err != nil {
		return nil, fmt.Errorf("load resolutions: %w", err)
	}
	defer resolutionRows.Close()
	for resolutionRows.Next() {
		var resolution Resolution
		var created string
		if err := resolutionRows.Scan(&resolution.Name, &resolution.EntityID, &resolution.Error, &created); err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		resolution.CreatedAt = parseTime(created)
		detail.Resolutions = append(detail.Resolutions, resolution)
	}
	return detail, resolutionRows.Err()
}
