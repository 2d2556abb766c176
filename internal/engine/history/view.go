package history

import (
	"context"

	"go.trai.ch/taskhistory/internal/core/domain"
)

// History is the view of one task's history for the current execution.
type History struct {
	repo     *Repository
	path     string
	history  *domain.TaskHistory
	previous domain.Option[*domain.ExecutionRecord]
	current  *domain.ExecutionRecord
}

// Previous returns the prior execution whose outputs best match the current
// execution, if any.
func (h *History) Previous() domain.Option[*domain.ExecutionRecord] {
	return h.previous
}

// Current returns the record of the current execution. Callers fill in its
// snapshots and properties before calling Finalize.
func (h *History) Current() *domain.ExecutionRecord {
	return h.current
}

// Path returns the task path the view belongs to.
func (h *History) Path() string {
	return h.path
}

// Snapshots returns the loader resolving deferred snapshot references of the
// records in this view.
func (h *History) Snapshots() domain.SnapshotLoader {
	return h.repo.snapshots
}

// Finalize persists new snapshot values and then the history itself. On
// failure the view is left untouched apart from identifiers already
// assigned, so Finalize may be called again.
func (h *History) Finalize(ctx context.Context) error {
	return h.repo.finalize(ctx, h)
}
