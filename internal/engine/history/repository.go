// Package history implements the task history repository: it loads the
// bounded execution history of a task, selects the prior execution that best
// matches the current one, and persists the updated history on finalize.
package history

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// StoreOpener opens the record store backing a repository.
type StoreOpener func() (ports.RecordStore, error)

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the clock used to stamp new execution records.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository hands out per-task history views backed by a record store and
// a snapshot store.
type Repository struct {
	store     func() (ports.RecordStore, error)
	opened    atomic.Bool
	snapshots ports.SnapshotStore
	tracer    ports.Tracer
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRepository creates a new Repository. The record store is opened on first
// use and reused for the lifetime of the repository.
func NewRepository(
	opener StoreOpener,
	snapshots ports.SnapshotStore,
	tracer ports.Tracer,
	opts ...Option,
) *Repository {
	r := &Repository{
		snapshots: snapshots,
		tracer:    tracer,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
	r.store = sync.OnceValues(func() (ports.RecordStore, error) {
		r.opened.Store(true)
		return opener()
	})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History loads the history of task, prepends a fresh record for the current
// execution and selects the best matching previous execution. Nothing is
// persisted until Finalize is called on the returned view.
func (r *Repository) History(ctx context.Context, task *domain.Task) (*History, error) {
	if task == nil || task.Path == "" {
		return nil, domain.ErrMissingTaskPath
	}

	_, span := r.tracer.Start(ctx, "history.get", ports.WithAttribute("task.path", task.Path))
	defer span.End()

	hist, err := r.load(task.Path, task.Types)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	outputs, err := absolutePaths(task.OutputFiles)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	current := domain.NewExecutionRecord(outputs, r.now())
	previous := hist.BestMatch(current)
	hist.Prepend(current)

	span.SetAttribute("history.size", hist.Len())
	span.SetAttribute("history.match", previous.IsPresent())

	return &History{
		repo:     r,
		path:     task.Path,
		history:  hist,
		previous: previous,
		current:  current,
	}, nil
}

// Entries returns the stored executions of the task at path, most recent first.
func (r *Repository) Entries(ctx context.Context, path string, types *domain.TypeRegistry) ([]*domain.ExecutionRecord, error) {
	if path == "" {
		return nil, domain.ErrMissingTaskPath
	}

	_, span := r.tracer.Start(ctx, "history.entries", ports.WithAttribute("task.path", path))
	defer span.End()

	hist, err := r.load(path, types)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("history.size", hist.Len())
	return hist.Executions(), nil
}

// Tasks returns the paths of all tasks with a stored history.
func (r *Repository) Tasks(ctx context.Context) ([]string, error) {
	_, span := r.tracer.Start(ctx, "history.tasks")
	defer span.End()

	store, err := r.store()
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, domain.ErrHistoryLoadFailed.Error())
	}
	keys, err := store.Keys()
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, domain.ErrHistoryLoadFailed.Error())
	}
	return keys, nil
}

// Snapshots returns the loader resolving deferred snapshot references.
func (r *Repository) Snapshots() domain.SnapshotLoader {
	return r.snapshots
}

// Close closes the record store if it was opened.
func (r *Repository) Close() error {
	if !r.opened.Load() {
		return nil
	}
	store, err := r.store()
	if err != nil {
		return nil //nolint:nilerr // Nothing was opened, so nothing needs closing.
	}
	return store.Close()
}

func (r *Repository) load(path string, types *domain.TypeRegistry) (*domain.TaskHistory, error) {
	store, err := r.store()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryLoadFailed.Error()), "task", path)
	}

	hist, found, err := store.Get(path, types)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryLoadFailed.Error()), "task", path)
	}
	if !found {
		return domain.NewTaskHistory(), nil
	}
	return hist, nil
}

func (r *Repository) finalize(ctx context.Context, h *History) error {
	_, span := r.tracer.Start(ctx, "history.finalize", ports.WithAttribute("task.path", h.path))
	defer span.End()

	lock := r.lockFor(h.path)
	lock.Lock()
	defer lock.Unlock()

	if err := r.persistSnapshots(h.history); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrHistoryFinalizeFailed.Error()), "task", h.path)
	}

	store, err := r.store()
	if err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrHistoryFinalizeFailed.Error()), "task", h.path)
	}
	if err := store.Put(h.path, h.history); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrHistoryFinalizeFailed.Error()), "task", h.path)
	}

	span.SetAttribute("history.size", h.history.Len())
	return nil
}

// persistSnapshots adds every snapshot value lacking a durable identifier to
// the snapshot store and attaches the identifiers once all adds succeeded.
func (r *Repository) persistSnapshots(hist *domain.TaskHistory) error {
	type pending struct {
		ref    domain.SnapshotRef
		attach func(domain.SnapshotRef)
		id     string
	}

	var work []*pending
	for _, rec := range hist.Executions() {
		if ref := rec.InputRef(); ref.IsDirty() {
			work = append(work, &pending{ref: ref, attach: rec.SetInputRef})
		}
		if ref := rec.OutputRef(); ref.IsDirty() {
			work = append(work, &pending{ref: ref, attach: rec.SetOutputRef})
		}
	}

	var g errgroup.Group
	for _, p := range work {
		g.Go(func() error {
			value, err := domain.ResolveSnapshot(p.ref, r.snapshots)
			if err != nil {
				return err
			}
			id, err := r.snapshots.Add(value)
			if err != nil {
				return err
			}
			p.id = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range work {
		p.attach(p.ref.Persisted(p.id))
	}
	return nil
}

func (r *Repository) lockFor(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[path] = lock
	}
	return lock
}

func absolutePaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetOutputPath.Error()), "path", p)
		}
		out = append(out, abs)
	}
	return out, nil
}
