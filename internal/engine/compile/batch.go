package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/busy/internal/engine/staleness"
	"go.trai.ch/zerr"
)

const (
	// DirPerm is the mode of created object and artifact directories.
	DirPerm = 0o750
)

// Options configures a Batch.
type Options struct {
	Process  ports.Process
	External ports.ExternalToolchain
	Logger   ports.Logger
	Oracle   *staleness.Oracle
	Commands *Commands
	Graph    *domain.Graph

	// Report receives the consolidated failure report.
	Report io.Writer

	// Ignore names targets excluded from this build.
	Ignore []string
}

// Batch executes the compile and link steps of one build invocation.
// Its methods are called concurrently from work queue jobs.
type Batch struct {
	proc     ports.Process
	external ports.ExternalToolchain
	logger   ports.Logger
	oracle   *staleness.Oracle
	cmds     *Commands
	graph    *domain.Graph
	report   io.Writer
	ignore   map[string]bool

	mu                sync.Mutex
	needsRecompile    map[string]bool
	fileWasRecompiled map[string]bool
	relinked          map[string]bool
	dependencyChanged map[string]bool
	errorDetected     bool
	failures          []error
	summary           domain.BuildSummary

	setupMu sync.Mutex
	setup   map[string]*setupState
}

type setupState struct {
	once sync.Once
	err  error
}

// NewBatch creates a Batch.
func NewBatch(opts Options) *Batch {
	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}
	report := opts.Report
	if report == nil {
		report = io.Discard
	}
	return &Batch{
		proc:              opts.Process,
		external:          opts.External,
		logger:            opts.Logger,
		oracle:            opts.Oracle,
		cmds:              opts.Commands,
		graph:             opts.Graph,
		report:            report,
		ignore:            ignore,
		needsRecompile:    make(map[string]bool),
		fileWasRecompiled: make(map[string]bool),
		relinked:          make(map[string]bool),
		dependencyChanged: make(map[string]bool),
		setup:             make(map[string]*setupState),
	}
}

// Ignored reports whether t is excluded from the build.
func (b *Batch) Ignored(t *domain.BuildTarget) bool {
	return b.ignore[t.Name]
}

// ErrorDetected reports whether any step of the batch failed.
func (b *Batch) ErrorDetected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorDetected
}

// Err returns every recorded failure joined.
func (b *Batch) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.failures...)
}

// Summary returns the outcome counts so far.
func (b *Batch) Summary() domain.BuildSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

// WasRecompiled reports whether source was compiled during this batch.
func (b *Batch) WasRecompiled(source string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fileWasRecompiled[filepath.Clean(source)]
}

// WasRelinked reports whether the artifact of target was regenerated during this batch.
func (b *Batch) WasRelinked(target string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.relinked[target]
}

func (b *Batch) toolchain(t *domain.BuildTarget) (*domain.Toolchain, error) {
	id, ok := b.graph.TargetID(t.Name)
	if !ok {
		return nil, zerr.With(domain.ErrTargetNotFound, "target", t.Name)
	}
	return domain.OutgoingOfType[*domain.Toolchain](b.graph, id)
}

func (b *Batch) record(o domain.JobOutcome, link bool) domain.JobOutcome {
	b.mu.Lock()
	b.summary.Record(o, link)
	b.mu.Unlock()
	return o
}

// Compile brings the object file of one source of t up to date.
// Failures are recorded in the batch and also returned.
func (b *Batch) Compile(ctx context.Context, t *domain.BuildTarget, file string) (domain.JobOutcome, error) {
	if b.Ignored(t) || b.ErrorDetected() {
		return b.record(domain.OutcomeSkipped, false), nil
	}
	tc, err := b.toolchain(t)
	if err != nil {
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "compile", Target: t.Name, File: file, Err: err}, err)
	}
	if tc.IsExternal() {
		return b.compileExternal(ctx, t, tc, file)
	}

	layout := b.cmds.Layout()
	source := layout.SourcePath(t, file)
	object := layout.ObjectPath(t, file)
	argv, err := b.cmds.CompileArgs(t, tc, file)
	if err != nil {
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "compile", Target: t.Name, File: file, Err: err}, err)
	}
	hash := Fingerprint(argv)

	reason := b.oracle.NeedsCompile(source, object, hash)
	if !reason.Stale() {
		return b.record(domain.OutcomeUpToDate, false), nil
	}
	b.logger.Debug("compile " + t.Name + "/" + file + " (" + string(reason) + "): " + strings.Join(argv, " "))

	if err := os.MkdirAll(filepath.Dir(object), DirPerm); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "path", filepath.Dir(object))
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "compile", Target: t.Name, File: file, Argv: argv, Err: err}, err)
	}

	started := time.Now()
	res, err := b.proc.Run(ctx, argv, layout.TargetDir(t))
	if err != nil {
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{Step: "compile", Target: t.Name, File: file, Argv: argv, Err: err}, err)
	}
	if !res.Success() {
		b.oracle.Stats().Forget(object)
		err := zerr.With(zerr.With(zerr.With(domain.ErrCompileFailed, "target", t.Name), "file", file), "exit_code", res.ExitStatus)
		return b.record(domain.OutcomeFailed, false), b.fail(Failure{
			Step: "compile", Target: t.Name, File: file, Argv: argv, Stdout: res.Stdout, Stderr: res.Stderr,
		}, err)
	}
	if len(res.Stderr) > 0 {
		b.logger.Warn(t.Name + "/" + file + ": " + strings.TrimSpace(string(res.Stderr)))
	}

	deps := b.readDepfile(layout.DepfilePath(t, file), source)
	b.oracle.Stats().RecordCompile(object, started, deps, hash)
	b.markCompiled(t, source)
	return b.record(domain.OutcomeBuilt, false), nil
}

func (b *Batch) readDepfile(path, source string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("reading dependency file " + path + ": " + err.Error())
		}
		return []string{source}
	}
	deps, err := staleness.ParseDepfile(data)
	if err != nil {
		b.logger.Warn("parsing dependency file " + path + ": " + err.Error())
		return []string{source}
	}
	return deps
}

func (b *Batch) markCompiled(t *domain.BuildTarget, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fileWasRecompiled[filepath.Clean(source)] = true
	b.needsRecompile[t.Name] = true
}

// Link brings the artifact of t up to date: an archive for static libraries,
// a linked binary for shared libraries and executables.
// Targets producing no artifact succeed without doing anything.
func (b *Batch) Link(ctx context.Context, t *domain.BuildTarget) (domain.JobOutcome, error) {
	if b.Ignored(t) || b.ErrorDetected() {
		return b.record(domain.OutcomeSkipped, true), nil
	}
	if t.SkipsBuild() {
		return b.record(domain.OutcomeUpToDate, true), nil
	}
	tc, err := b.toolchain(t)
	if err != nil {
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{Step: "link", Target: t.Name, Err: err}, err)
	}

	b.mu.Lock()
	ownChanged := b.needsRecompile[t.Name]
	depsChanged := b.dependencyChanged[t.Name]
	b.mu.Unlock()

	artifact := b.cmds.Layout().ArtifactPath(t)
	var reason staleness.Reason
	if t.Kind == domain.KindStaticLibrary {
		reason = b.oracle.NeedsArchive(ownChanged, artifact, b.linkable(b.cmds.Objects(t)))
	} else {
		reason = b.oracle.NeedsLink(t, ownChanged, depsChanged, artifact, b.linkable(b.cmds.LinkInputs(t)))
	}
	if !reason.Stale() {
		return b.record(domain.OutcomeUpToDate, true), nil
	}

	if err := os.MkdirAll(filepath.Dir(artifact), DirPerm); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrOutputDirCreateFailed.Error()), "path", filepath.Dir(artifact))
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{Step: "link", Target: t.Name, Err: err}, err)
	}

	if tc.IsExternal() {
		return b.linkExternal(ctx, t, tc, artifact)
	}

	var argv []string
	if t.Kind == domain.KindStaticLibrary {
		if err := os.Remove(artifact); err != nil && !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("removing stale archive " + artifact + ": " + err.Error())
		}
		argv = b.cmds.ArchiveArgs(t, tc)
	} else if argv, err = b.cmds.LinkArgs(t, tc); err != nil {
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{Step: "link", Target: t.Name, Err: err}, err)
	}
	b.logger.Debug("link " + t.Name + " (" + string(reason) + "): " + strings.Join(argv, " "))

	res, err := b.proc.Run(ctx, argv, b.cmds.Layout().Root)
	if err != nil {
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{Step: "link", Target: t.Name, Argv: argv, Err: err}, err)
	}
	if !res.Success() {
		err := zerr.With(zerr.With(domain.ErrLinkFailed, "target", t.Name), "exit_code", res.ExitStatus)
		return b.record(domain.OutcomeFailed, true), b.fail(Failure{
			Step: "link", Target: t.Name, Argv: argv, Stdout: res.Stdout, Stderr: res.Stderr,
		}, err)
	}
	if len(res.Stderr) > 0 {
		b.logger.Warn(t.Name + ": " + strings.TrimSpace(string(res.Stderr)))
	}

	b.markRelinked(t)
	return b.record(domain.OutcomeBuilt, true), nil
}

// linkable drops the objects an external builder declined to produce.
func (b *Batch) linkable(paths []string) []string {
	stats := b.oracle.Stats()
	return slices.DeleteFunc(slices.Clone(paths), stats.NotCompilable)
}

// markRelinked flags every transitive dependent of t so their link steps run.
func (b *Batch) markRelinked(t *domain.BuildTarget) {
	id, _ := b.graph.TargetID(t.Name)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relinked[t.Name] = true
	b.graph.VisitIncoming(id, func(dep domain.NodeID) {
		if n := b.graph.Node(dep); n.Kind == domain.NodeTarget {
			b.dependencyChanged[n.Target.Name] = true
		}
	})
}

// Panicked records a panic raised while running job for t as a failure of the batch.
func (b *Batch) Panicked(t *domain.BuildTarget, job string, link bool, r any) error {
	err := zerr.With(zerr.Wrap(errors.New(fmt.Sprint(r)), domain.ErrJobPanicked.Error()), "job", job)
	b.record(domain.OutcomeFailed, link)
	return b.fail(Failure{Step: "job", Target: t.Name, Err: err}, err)
}

// fail records err, latches errorDetected and prints the report for the
// first failure only. It returns err.
func (b *Batch) fail(f Failure, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	first := !b.errorDetected
	b.errorDetected = true
	b.failures = append(b.failures, err)
	if first {
		if f.Err == nil {
			f.Err = err
		}
		WriteReport(b.report, f)
	}
	return err
}
