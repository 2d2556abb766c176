// Package app implements the application layer for taskhistory.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/taskhistory/internal/adapters/recordstore"
	"go.trai.ch/taskhistory/internal/adapters/snapshot"
	"go.trai.ch/taskhistory/internal/adapters/telemetry"
	"go.trai.ch/taskhistory/internal/build"
	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/taskhistory/internal/engine/history"
	"go.trai.ch/taskhistory/internal/ui/output"
	"go.trai.ch/taskhistory/internal/ui/style"
	"go.trai.ch/zerr"
)

// InvocationKind is the property kind under which Record stores how an
// execution was recorded.
const InvocationKind = "taskhistory.invocation"

// invocationProperty is the property name holding the Invocation.
const invocationProperty = "invocation"

// Invocation describes the command line that recorded an execution.
type Invocation struct {
	Inputs  []string `json:"inputs"`
	Version string   `json:"version"`
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	snapshotter  ports.Snapshotter
	tracer       ports.Tracer
	logger       ports.Logger
	types        *domain.TypeRegistry
	out          io.Writer
	now          func() time.Time
	opts         GlobalOptions
	shutdown     []func(context.Context) error
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	snapshotter ports.Snapshotter,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	types := domain.NewTypeRegistry()
	domain.MustRegisterType[Invocation](types, InvocationKind)

	return &App{
		configLoader: loader,
		snapshotter:  snapshotter,
		tracer:       tracer,
		logger:       log,
		types:        types,
		out:          os.Stdout,
		now:          time.Now,
	}
}

// WithOutput sets the writer command results are printed to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithClock sets the clock used to stamp recorded executions.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// GlobalOptions are settings shared by every command.
type GlobalOptions struct {
	// Rebuild discards every existing record regardless of the configured mode.
	Rebuild bool
	// JSON switches logging to JSON.
	JSON bool
	// Trace reports every finished span through the logger.
	Trace bool
}

// Configure applies options shared by every command.
func (a *App) Configure(opts GlobalOptions) {
	a.opts = opts

	if opts.JSON {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}
	if opts.Trace {
		a.shutdown = append(a.shutdown, telemetry.InstallProvider(a.logger))
	}
}

// Shutdown releases what Configure set up, such as the tracer provider.
func (a *App) Shutdown(ctx context.Context) error {
	var errs error
	for _, fn := range a.shutdown {
		errs = errors.Join(errs, fn(ctx))
	}
	a.shutdown = nil
	return errs
}

// RecordOptions configuration for the Record method.
type RecordOptions struct {
	Inputs []string
}

// Record looks up the history of the task at taskPath, reports the selected
// baseline, snapshots inputs and outputs, and persists the new execution.
func (a *App) Record(ctx context.Context, taskPath string, outputs []string, opts RecordOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.opts.Rebuild {
		cfg.Mode = domain.UsageForceRebuild
	}

	repo := a.openRepository(cfg)
	defer func() { _ = repo.Close() }()

	h, err := repo.History(ctx, &domain.Task{Path: taskPath, OutputFiles: outputs, Types: a.types})
	if err != nil {
		return err
	}

	inputSnap, err := a.snapshotter.Snapshot(opts.Inputs)
	if err != nil {
		return err
	}
	outputSnap, err := a.snapshotter.Snapshot(h.Current().OutputFiles.Paths())
	if err != nil {
		return err
	}

	p := a.palette()
	_, _ = fmt.Fprintln(a.out, p.Heading.Render(taskPath))

	if prev, ok := h.Previous().Get(); ok {
		a.printBaseline(p, taskPath, prev, h.Snapshots())
	} else {
		a.logger.Info("no previous execution of " + taskPath + " shares its outputs")
		_, _ = fmt.Fprintf(a.out, "  %s none\n", p.Muted.Render("baseline:"))
	}

	current := h.Current()
	current.SetInputSnapshot(inputSnap)
	current.SetOutputSnapshot(outputSnap)
	current.Properties[invocationProperty] = domain.Property{
		Kind:  InvocationKind,
		Value: Invocation{Inputs: opts.Inputs, Version: build.Version},
	}

	if err := h.Finalize(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "  %s %s %s, %s\n",
		p.Success.Render(style.Check),
		p.Muted.Render("recorded:"),
		plural(inputSnap.Len(), "input path"),
		plural(outputSnap.Len(), "output path"),
	)
	return nil
}

// printBaseline reports the selected execution. Snapshots that cannot be
// read only lose their counts; the new execution is still recorded.
func (a *App) printBaseline(p style.Palette, taskPath string, prev *domain.ExecutionRecord, loader domain.SnapshotLoader) {
	recordedAt := prev.RecordedAt.UTC().Format(time.RFC3339)

	in, inErr := prev.InputSnapshot(loader)
	out, outErr := prev.OutputSnapshot(loader)
	if err := errors.Join(inErr, outErr); err != nil {
		a.logger.Warn("snapshots of the baseline of " + taskPath + " cannot be read: " + err.Error())
		_, _ = fmt.Fprintf(a.out, "  %s execution recorded at %s (snapshots unavailable)\n",
			p.Muted.Render("baseline:"), recordedAt)
		return
	}

	_, _ = fmt.Fprintf(a.out, "  %s execution recorded at %s (%s, %s)\n",
		p.Muted.Render("baseline:"),
		recordedAt,
		plural(in.Len(), "input path"),
		plural(out.Len(), "output path"),
	)
}

// Show prints the stored executions of the task at taskPath, most recent
// first. Without a task path it lists every task with a stored history.
func (a *App) Show(ctx context.Context, taskPath string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	// Show never forces a rebuild.
	cfg.Mode = domain.UsageNormal

	repo := a.openRepository(cfg)
	defer func() { _ = repo.Close() }()

	p := a.palette()

	if taskPath == "" {
		tasks, err := repo.Tasks(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			_, _ = fmt.Fprintln(a.out, p.Muted.Render("no task history recorded"))
			return nil
		}
		for _, task := range tasks {
			_, _ = fmt.Fprintln(a.out, task)
		}
		return nil
	}

	entries, err := repo.Entries(ctx, taskPath, a.types)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "%s %s\n", p.Heading.Render(taskPath), p.Muted.Render("("+plural(len(entries), "execution")+")"))
	for i, rec := range entries {
		a.printExecution(p, i, rec, repo.Snapshots())
	}
	return nil
}

func (a *App) printExecution(p style.Palette, i int, rec *domain.ExecutionRecord, loader domain.SnapshotLoader) {
	icon := style.Circle
	if i == 0 {
		icon = style.Dot
	}
	_, _ = fmt.Fprintf(a.out, "%s #%d %s\n", icon, i+1, rec.RecordedAt.UTC().Format(time.RFC3339))

	_, _ = fmt.Fprintf(a.out, "    %s %d\n", p.Muted.Render("output files:"), rec.OutputFiles.Len())
	for _, path := range rec.OutputFiles.Paths() {
		_, _ = fmt.Fprintf(a.out, "      %s\n", path)
	}

	in, err := rec.InputSnapshot(loader)
	_, _ = fmt.Fprintf(a.out, "    %s %s\n", p.Muted.Render("input snapshot:"), snapshotSize(in, err))
	out, err := rec.OutputSnapshot(loader)
	_, _ = fmt.Fprintf(a.out, "    %s %s\n", p.Muted.Render("output snapshot:"), snapshotSize(out, err))

	if prop, ok := rec.Properties[invocationProperty]; ok {
		if inv, ok := prop.Value.(*Invocation); ok {
			_, _ = fmt.Fprintf(a.out, "    %s taskhistory %s\n", p.Muted.Render("recorded by:"), inv.Version)
		}
	}
}

func snapshotSize(snap domain.FileSnapshot, err error) string {
	if err != nil {
		return "unavailable"
	}
	return plural(snap.Len(), "path")
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Records bool
	// Snapshots implies Records.
	Snapshots bool
}

// Clean removes the stored records and snapshots selected by options.
// Removing snapshots also removes the records, which only reference them.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Records || options.Snapshots {
		remove(domain.RecordsPath(cfg.CacheDir), "task records")
	}
	if options.Snapshots {
		remove(domain.SnapshotsPath(cfg.CacheDir), "snapshots")
		if err := os.Remove(cfg.CacheDir); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove cache directory"))
		}
	}

	return errs
}

func (a *App) loadConfig() (*domain.Config, error) {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func (a *App) openRepository(cfg *domain.Config) *history.Repository {
	opener := func() (ports.RecordStore, error) {
		return recordstore.Open(domain.RecordsPath(cfg.CacheDir), cfg.Scope, cfg.Mode, cfg.Fingerprint, a.logger)
	}
	return history.NewRepository(
		opener,
		snapshot.NewStore(domain.SnapshotsPath(cfg.CacheDir)),
		a.tracer,
		history.WithClock(a.now),
	)
}

func (a *App) palette() style.Palette {
	return style.NewPalette(lipgloss.NewRenderer(a.out, termenv.WithProfile(output.ProfileFor(a.out))))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
