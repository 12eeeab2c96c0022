package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/busy/internal/adapters/watcher"
	"go.trai.ch/busy/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Watch builds once and rebuilds whenever files below the project root change.
// It returns when ctx is cancelled. Failed builds are reported and watching continues.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	project, err := a.load(opts.Config)
	if err != nil {
		return err
	}
	a.rebuild(ctx, project, opts)

	buildDir := domain.NewLayout(project, opts.Mode).BuildDir
	if err := a.watcher.Start(ctx, project.Root); err != nil {
		return err
	}
	a.logger.Info("watching " + project.Root)

	triggers := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case triggers <- paths:
		default:
			// A rebuild is already queued and will see these changes.
		}
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		debouncer.Stop()
		return a.watcher.Stop()
	})

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if insideDir(buildDir, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-triggers:
				a.logger.Info(describeChanges(project.Root, paths))
				// busy.yaml may be among the changed files.
				reloaded, err := a.load(opts.Config)
				if err != nil {
					a.logger.Error(err)
					continue
				}
				project = reloaded
				a.rebuild(ctx, project, opts)
			}
		}
	})

	return g.Wait()
}

// rebuild runs one build and logs instead of returning its error. Failed jobs
// have already been reported by the scheduler.
func (a *App) rebuild(ctx context.Context, project *domain.Project, opts BuildOptions) {
	err := a.build(ctx, project, opts)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, domain.ErrBuildExecutionFailed):
		a.logger.Warn("build failed, waiting for changes")
	default:
		a.logger.Error(err)
	}
}

func insideDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func describeChanges(root string, paths []string) string {
	first := paths[0]
	if rel, err := filepath.Rel(root, first); err == nil {
		first = rel
	}
	if len(paths) == 1 {
		return first + " changed, rebuilding"
	}
	return fmt.Sprintf("%s and %d more changed, rebuilding", first, len(paths)-1)
}
