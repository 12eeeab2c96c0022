package app_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/app"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/busy/internal/core/ports/mocks"
	"go.trai.ch/busy/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fakeBuilder struct {
	mu      sync.Mutex
	runs    []scheduler.Options
	summary domain.BuildSummary
	err     error
}

func (f *fakeBuilder) Run(_ context.Context, _ *domain.Project, opts scheduler.Options) (domain.BuildSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, opts)
	return f.summary, f.err
}

func (f *fakeBuilder) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

type fixture struct {
	loader    *mocks.MockConfigLoader
	store     *mocks.MockFileStatStore
	watcher   *mocks.MockWatcher
	telemetry *mocks.MockTelemetry
	logger    *mocks.MockLogger
	builder   *fakeBuilder
	app       *app.App
	out       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:    mocks.NewMockConfigLoader(ctrl),
		store:     mocks.NewMockFileStatStore(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		builder:   &fakeBuilder{},
		out:       &bytes.Buffer{},
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.app = app.New(f.loader, f.builder, f.store, f.watcher, f.telemetry, f.logger).WithOutput(f.out)
	return f
}

func testProject(root string) *domain.Project {
	reg := domain.NewTargetRegistry()
	_ = reg.Add(&domain.BuildTarget{
		Name: "headers", Path: "headers", Kind: domain.KindHeaderOnly, Language: domain.LanguageCXX,
	})
	_ = reg.Add(&domain.BuildTarget{
		Name: "base", Path: "base", Kind: domain.KindStaticLibrary, Language: domain.LanguageCXX,
		Dependencies: []string{"headers"}, Sources: domain.PartitionSources([]string{"base.cpp"}),
	})
	_ = reg.Add(&domain.BuildTarget{
		Name: "app", Path: "app", Kind: domain.KindExecutable, Language: domain.LanguageCXX,
		Dependencies: []string{"base"}, Sources: domain.PartitionSources([]string{"main.cpp", "cli.cpp"}),
	})
	return &domain.Project{
		Root:    root,
		Targets: reg,
		Toolchains: map[string]*domain.Toolchain{
			"gcc": {
				Name:      "gcc",
				C:         domain.Command{Args: []string{"gcc"}},
				CXX:       domain.Command{Args: []string{"g++"}},
				Archivist: domain.Command{Args: []string{"ar"}},
			},
		},
		DefaultToolchain: "gcc",
	}
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	project := testProject("/work")
	f.builder.summary = domain.BuildSummary{Compiled: 3, Linked: 2}

	f.loader.EXPECT().Load("busy.yaml").Return(project, nil)
	f.logger.EXPECT().Info("✓ compiled 3, linked 2, 0 up to date")

	err := f.app.Build(context.Background(), app.BuildOptions{
		Config:  "busy.yaml",
		Targets: []string{"app"},
		Mode:    domain.ModeRelease,
		Jobs:    4,
		Force:   true,
	})
	require.NoError(t, err)

	require.Len(t, f.builder.runs, 1)
	assert.Equal(t, scheduler.Options{
		Targets: []string{"app"},
		Mode:    domain.ModeRelease,
		Jobs:    4,
		Force:   true,
	}, f.builder.runs[0])
}

func TestApp_Build_NothingToDo(t *testing.T) {
	f := newFixture(t)
	f.builder.summary = domain.BuildSummary{UpToDate: 5}

	f.loader.EXPECT().Load(".").Return(testProject("/work"), nil)
	f.logger.EXPECT().Info("✓ nothing to do, 5 up to date")

	require.NoError(t, f.app.Build(context.Background(), app.BuildOptions{}))
}

func TestApp_Build_LoadError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	err := f.app.Build(context.Background(), app.BuildOptions{})
	require.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
	assert.Zero(t, f.builder.Runs())
}

func TestApp_Build_ExecutionFailed(t *testing.T) {
	f := newFixture(t)
	f.builder.err = errors.Join(domain.ErrBuildExecutionFailed, domain.ErrCompileFailed)
	f.loader.EXPECT().Load(".").Return(testProject("/work"), nil)

	err := f.app.Build(context.Background(), app.BuildOptions{})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestApp_Plan(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(testProject("/work"), nil)

	err := f.app.Plan(context.Background(), app.BuildOptions{Mode: domain.ModeRelease})
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "plan", f.out.Bytes())
}

func TestApp_Plan_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(testProject("/work"), nil)

	err := f.app.Plan(context.Background(), app.BuildOptions{Targets: []string{"ghost"}})
	require.ErrorContains(t, err, domain.ErrTargetNotFound.Error())
	assert.Empty(t, f.out.String())
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	artifact := filepath.Join(root, domain.DefaultBuildDir, "debug", "app")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0o750))
	require.NoError(t, os.WriteFile(artifact, []byte("elf"), 0o600))

	f.loader.EXPECT().Load(".").Return(testProject(root), nil)
	f.logger.EXPECT().Info(gomock.Any()).Times(2)
	f.store.EXPECT().Clear(root).Return(nil)

	require.NoError(t, f.app.Clean(context.Background(), app.CleanOptions{}))

	_, err := os.Stat(filepath.Join(root, domain.DefaultBuildDir))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_Clean_StoreError(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()

	f.loader.EXPECT().Load(".").Return(testProject(root), nil)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.store.EXPECT().Clear(root).Return(zerr.Wrap(errors.New("read-only file system"), domain.ErrStoreWriteFailed.Error()))

	err := f.app.Clean(context.Background(), app.CleanOptions{})
	require.ErrorContains(t, err, domain.ErrCleanFailed.Error())
}

func TestApp_Close(t *testing.T) {
	f := newFixture(t)
	f.telemetry.EXPECT().Close().Return(nil)
	require.NoError(t, f.app.Close())
}

type configurableLogger struct {
	*mocks.MockLogger
	json  bool
	level domain.LogLevel
}

func (l *configurableLogger) SetJSON(v bool)               { l.json = v }
func (l *configurableLogger) SetLevel(lvl domain.LogLevel) { l.level = lvl }

func TestApp_ConfigureLogging(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := &configurableLogger{MockLogger: mocks.NewMockLogger(ctrl)}
	a := app.New(nil, &fakeBuilder{}, nil, nil, nil, log)

	a.ConfigureLogging(true, true)
	assert.True(t, log.json)
	assert.Equal(t, domain.LogLevelDebug, log.level)

	a.ConfigureLogging(false, false)
	assert.False(t, log.json)
	assert.Equal(t, domain.LogLevelInfo, log.level)
}

func events(paths ...string) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, p := range paths {
			if !yield(ports.WatchEvent{Path: p, Operation: ports.OpWrite}) {
				return
			}
		}
	}
}

func TestApp_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		project := testProject("/work")

		f.loader.EXPECT().Load(".").Return(project, nil).Times(2)
		f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
		f.watcher.EXPECT().Start(gomock.Any(), "/work").Return(nil)
		f.watcher.EXPECT().Events().Return(events(
			"/work/base/base.cpp",
			"/work/.busy/out/debug/base.a",
			"/work/app/main.cpp",
		))
		f.watcher.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx, app.BuildOptions{}) }()

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 2, f.builder.Runs(), "initial build plus one debounced rebuild")

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_FailedBuildKeepsWatching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.builder.err = errors.Join(domain.ErrBuildExecutionFailed, domain.ErrLinkFailed)

		f.loader.EXPECT().Load(".").Return(testProject("/work"), nil).Times(2)
		f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
		f.logger.EXPECT().Warn("build failed, waiting for changes").Times(2)
		f.watcher.EXPECT().Start(gomock.Any(), "/work").Return(nil)
		f.watcher.EXPECT().Events().Return(events("/work/app/main.cpp"))
		f.watcher.EXPECT().Stop().Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx, app.BuildOptions{}) }()

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 2, f.builder.Runs())

		cancel()
		require.NoError(t, <-done)
	})
}
