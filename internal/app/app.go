// Package app implements the application layer for busy.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/busy/internal/engine/scheduler"
	"go.trai.ch/busy/internal/ui/output"
	"go.trai.ch/busy/internal/ui/style"
	"go.trai.ch/zerr"
)

// Builder runs one build of a loaded project.
type Builder interface {
	Run(ctx context.Context, project *domain.Project, opts scheduler.Options) (domain.BuildSummary, error)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      Builder
	store        ports.FileStatStore
	watcher      ports.Watcher
	telemetry    ports.Telemetry
	logger       ports.Logger
	out          io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	builder Builder,
	store ports.FileStatStore,
	watcher ports.Watcher,
	telemetry ports.Telemetry,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		builder:      builder,
		store:        store,
		watcher:      watcher,
		telemetry:    telemetry,
		logger:       log,
		out:          os.Stdout,
	}
}

// WithOutput redirects command output such as the plan listing.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// BuildOptions configures Build, Watch and Plan.
type BuildOptions struct {
	// Config is the busy.yaml path or a directory below the project root.
	Config  string
	Targets []string
	Mode    domain.BuildMode
	Jobs    int
	Force   bool
}

func (o BuildOptions) scheduler() scheduler.Options {
	return scheduler.Options{
		Targets: o.Targets,
		Mode:    o.Mode,
		Jobs:    o.Jobs,
		Force:   o.Force,
	}
}

// ConfigureLogging applies the global --verbose and --json flags to the logger.
func (a *App) ConfigureLogging(verbose, jsonOutput bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonOutput)
	}
	if l, ok := a.logger.(interface{ SetLevel(domain.LogLevel) }); ok {
		if verbose {
			l.SetLevel(domain.LogLevelDebug)
		} else {
			l.SetLevel(domain.LogLevelInfo)
		}
	}
}

// Build loads the project and builds the requested targets.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	project, err := a.load(opts.Config)
	if err != nil {
		return err
	}
	return a.build(ctx, project, opts)
}

func (a *App) build(ctx context.Context, project *domain.Project, opts BuildOptions) error {
	summary, err := a.builder.Run(ctx, project, opts.scheduler())
	if err != nil {
		return err
	}
	a.logger.Info(summaryLine(summary))
	return nil
}

// Plan prints the targets a build would visit in dependency order.
func (a *App) Plan(_ context.Context, opts BuildOptions) error {
	project, err := a.load(opts.Config)
	if err != nil {
		return err
	}
	plan, err := scheduler.Plan(project, opts.Mode, opts.Targets)
	if err != nil {
		return err
	}

	styles := style.NewStyles(output.Renderer(a.out))
	nameWidth, kindWidth, toolWidth := 0, 0, 0
	for _, e := range plan {
		nameWidth = max(nameWidth, len(e.Target.Name))
		kindWidth = max(kindWidth, len(e.Target.Kind))
		toolWidth = max(toolWidth, len(e.Toolchain))
	}

	for _, e := range plan {
		name := styles.Label.Render(fmt.Sprintf("%-*s", nameWidth, e.Target.Name))
		columns := fmt.Sprintf("%-*s  %-*s", kindWidth, e.Target.Kind, toolWidth, e.Toolchain)
		detail := styles.Muted.Render(describePlanEntry(project.Root, e))
		if _, err := fmt.Fprintf(a.out, "%s  %s  %s\n", name, columns, detail); err != nil {
			return err
		}
	}
	return nil
}

func describePlanEntry(root string, e scheduler.PlanEntry) string {
	switch {
	case e.Target.Installed:
		return "installed"
	case e.Target.Precompiled:
		return "precompiled"
	case e.Artifact == "":
		return "headers only"
	}
	artifact := e.Artifact
	if rel, err := filepath.Rel(root, artifact); err == nil {
		artifact = rel
	}
	noun := "sources"
	if e.Sources == 1 {
		noun = "source"
	}
	return fmt.Sprintf("%s (%d %s)", artifact, e.Sources, noun)
}

// CleanOptions configures Clean.
type CleanOptions struct {
	Config string
}

// Clean removes the build directory and the recorded FileStats.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	project, err := a.load(opts.Config)
	if err != nil {
		return err
	}

	var errs error
	buildDir := domain.NewLayout(project, domain.ModeDebug).BuildDir
	a.logger.Info("removing " + buildDir)
	if err := os.RemoveAll(buildDir); err != nil {
		errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", buildDir))
	}

	a.logger.Info("removing file stats")
	if err := a.store.Clear(project.Root); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, domain.ErrCleanFailed.Error()))
	}
	return errs
}

// Close flushes the progress recording.
func (a *App) Close() error {
	return a.telemetry.Close()
}

func (a *App) load(path string) (*domain.Project, error) {
	if path == "" {
		path = "."
	}
	project, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

func summaryLine(s domain.BuildSummary) string {
	if s.Compiled == 0 && s.Linked == 0 {
		return fmt.Sprintf("%s nothing to do, %d up to date", style.Check, s.UpToDate)
	}
	return fmt.Sprintf("%s compiled %d, linked %d, %d up to date", style.Check, s.Compiled, s.Linked, s.UpToDate)
}
