// Package scheduler drives a build: it turns the target graph into compile and
// link jobs, runs them on a work queue and persists the incremental state.
package scheduler

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"
	"slices"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/busy/internal/engine/compile"
	"go.trai.ch/busy/internal/engine/staleness"
	"go.trai.ch/busy/internal/engine/workqueue"
)

// Options selects what a build does.
type Options struct {
	// Targets to build with their dependencies. Empty or "all" builds everything.
	Targets []string
	Mode    domain.BuildMode
	// Jobs is the number of workers. Zero uses runtime.NumCPU.
	Jobs int
	// Force ignores recorded FileStats.
	Force bool
}

// Scheduler manages the execution of builds.
type Scheduler struct {
	process   ports.Process
	external  ports.ExternalToolchain
	store     ports.FileStatStore
	telemetry ports.Telemetry
	logger    ports.Logger
	report    io.Writer
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	process ports.Process,
	external ports.ExternalToolchain,
	store ports.FileStatStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		process:   process,
		external:  external,
		store:     store,
		telemetry: telemetry,
		logger:    logger,
		report:    os.Stderr,
	}
}

// WithReport redirects the failure report, which goes to stderr by default.
func (s *Scheduler) WithReport(w io.Writer) *Scheduler {
	s.report = w
	return s
}

// Run builds the project. Configuration errors are returned before any job
// runs. Job failures let every dispatched job finish and are then returned
// joined with domain.ErrBuildExecutionFailed; their report is already written.
// Cancellation and a stalled queue are returned as they are.
func (s *Scheduler) Run(ctx context.Context, project *domain.Project, opts Options) (domain.BuildSummary, error) {
	flavor := &domain.Flavor{Name: opts.Mode.String(), Mode: opts.Mode}
	graph, err := domain.BuildGraph(project, flavor)
	if err != nil {
		return domain.BuildSummary{}, err
	}
	_, ignore, err := selectTargets(graph, project, opts.Targets)
	if err != nil {
		return domain.BuildSummary{}, err
	}

	stats, err := s.store.Load(project.Root)
	if err != nil {
		s.logger.Warn("ignoring unreadable file stats: " + err.Error())
		stats = nil
	}
	table := staleness.NewTable(stats)

	batch := compile.NewBatch(compile.Options{
		Process:  s.process,
		External: s.external,
		Logger:   s.logger,
		Oracle:   staleness.NewOracle(table, opts.Force),
		Commands: compile.NewCommands(graph, domain.NewLayout(project, opts.Mode)),
		Graph:    graph,
		Report:   s.report,
		Ignore:   ignore,
	})
	if err := batch.Prepare(ctx, graph.TopologicalTargets()); err != nil {
		return domain.BuildSummary{}, err
	}

	queue := workqueue.New()
	if err := s.register(queue, graph, batch); err != nil {
		return domain.BuildSummary{}, err
	}
	if err := queue.Validate(); err != nil {
		return domain.BuildSummary{}, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	runErr := queue.Run(ctx, jobs)

	if err := s.store.Save(project.Root, table.Snapshot()); err != nil {
		s.logger.Warn("file stats not saved, the next build starts from scratch: " + err.Error())
	}
	summary := batch.Summary()
	if batch.ErrorDetected() {
		return summary, errors.Join(domain.ErrBuildExecutionFailed, batch.Err())
	}
	return summary, runErr
}

// register inserts one job per source file and one link job per target.
// A compile job waits for the link jobs of the target's direct dependencies;
// a link job additionally waits for the target's own compile jobs.
func (s *Scheduler) register(q *workqueue.Queue, graph *domain.Graph, batch *compile.Batch) error {
	for _, t := range graph.TopologicalTargets() {
		id, _ := graph.TargetID(t.Name)
		var depLinks []string
		for _, dep := range graph.DirectDependencies(id) {
			depLinks = append(depLinks, linkJob(dep))
		}

		linkBlockers := slices.Clone(depLinks)
		if !t.SkipsBuild() {
			for _, file := range t.Sources.Compilable() {
				name := compileJob(t, file)
				err := q.Insert(name, s.action(batch, t, name, func(ctx context.Context) (domain.JobOutcome, error) {
					return batch.Compile(ctx, t, file)
				}), depLinks...)
				if err != nil {
					return err
				}
				linkBlockers = append(linkBlockers, name)
			}
		}

		name := linkJob(t)
		err := q.Insert(name, s.action(batch, t, name, func(ctx context.Context) (domain.JobOutcome, error) {
			return batch.Link(ctx, t)
		}), linkBlockers...)
		if err != nil {
			return err
		}
	}
	return nil
}

// action wraps a job in a telemetry vertex. A panic becomes a reported failure of the batch.
func (s *Scheduler) action(batch *compile.Batch, t *domain.BuildTarget, name string, run func(context.Context) (domain.JobOutcome, error)) workqueue.Action {
	return func(ctx context.Context) (err error) {
		ctx, vertex := s.telemetry.Record(ctx, name)
		defer func() {
			if r := recover(); r != nil {
				err = batch.Panicked(t, name, name == linkJob(t), r)
			}
			vertex.Complete(err)
		}()

		outcome, err := run(ctx)
		switch outcome {
		case domain.OutcomeUpToDate:
			vertex.Cached()
		case domain.OutcomeSkipped:
			vertex.Log(domain.LogLevelDebug, "skipped")
		case domain.OutcomeBuilt, domain.OutcomeFailed:
		}
		return err
	}
}

func compileJob(t *domain.BuildTarget, file string) string {
	return t.Name + "/compile/" + file
}

func linkJob(t *domain.BuildTarget) string {
	return t.Name + "/link"
}
