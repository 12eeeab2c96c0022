package compile_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func externalFixture(t *testing.T) *batchFixture {
	t.Helper()
	tgt := &domain.BuildTarget{
		Name: "ext", Path: "ext", Kind: domain.KindStaticLibrary, Language: domain.LanguageCXX,
		Sources:      domain.PartitionSources([]string{"one.cpp", "two.cpp"}),
		IncludePaths: []string{"include"},
	}
	f := newBatchFixture(t, nil, tgt)
	f.project.Toolchains["gcc"].External = "/usr/bin/builder"
	return f
}

func TestBatch_Prepare(t *testing.T) {
	t.Run("supported", func(t *testing.T) {
		f := externalFixture(t)
		f.ext.EXPECT().Info(gomock.Any(), gomock.Any()).
			Return(domain.ExternalInfo{Languages: []domain.Language{domain.LanguageCXX}}, nil).Times(1)

		require.NoError(t, f.batch.Prepare(context.Background(), f.graph.TopologicalTargets()))
	})

	t.Run("unsupported language", func(t *testing.T) {
		f := externalFixture(t)
		f.ext.EXPECT().Info(gomock.Any(), gomock.Any()).
			Return(domain.ExternalInfo{Languages: []domain.Language{domain.LanguageC}}, nil)

		err := f.batch.Prepare(context.Background(), f.graph.TopologicalTargets())
		require.ErrorContains(t, err, domain.ErrUnknownToolchain.Error())
	})

	t.Run("info fails", func(t *testing.T) {
		f := externalFixture(t)
		f.ext.EXPECT().Info(gomock.Any(), gomock.Any()).Return(domain.ExternalInfo{}, errors.New("no such binary"))

		require.Error(t, f.batch.Prepare(context.Background(), f.graph.TopologicalTargets()))
	})
}

func TestBatch_ExternalCompile(t *testing.T) {
	f := externalFixture(t)
	ext := f.target(t, "ext")

	f.ext.EXPECT().SetupTranslationSet(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Toolchain, req domain.TranslationSetRequest) error {
			assert.Equal(t, "ext", req.Target)
			assert.Len(t, req.IncludePaths, 1)
			return nil
		}).Times(1)
	f.ext.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Toolchain, req domain.ExternalCompileRequest) (domain.ExternalCompileResult, error) {
			require.NoError(t, os.MkdirAll(dirOf(req.Output), 0o750))
			require.NoError(t, os.WriteFile(req.Output, []byte("obj"), 0o644))
			return domain.ExternalCompileResult{Compilable: true, OutputFiles: []string{req.Output}}, nil
		}).Times(2)

	for _, file := range []string{"one.cpp", "two.cpp"} {
		outcome, err := f.batch.Compile(context.Background(), ext, file)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeBuilt, outcome)
	}

	f.ext.EXPECT().Link(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Toolchain, req domain.ExternalLinkRequest) (domain.ExternalLinkResult, error) {
			assert.Len(t, req.Objects, 2)
			assert.Equal(t, domain.KindStaticLibrary, req.Kind)
			return domain.ExternalLinkResult{OutputFiles: []string{req.Output}}, nil
		})
	outcome, err := f.batch.Link(context.Background(), ext)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBuilt, outcome)
}

func TestBatch_ExternalStderrFails(t *testing.T) {
	f := externalFixture(t)
	ext := f.target(t, "ext")

	f.ext.EXPECT().SetupTranslationSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.ext.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ExternalCompileResult{Stderr: "warning treated as failure"}, domain.ErrExternalToolFailed)

	outcome, err := f.batch.Compile(context.Background(), ext, "one.cpp")
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.Contains(t, f.report.String(), "warning treated as failure")
}

func TestBatch_ExternalNotCompilableLeftOutOfLink(t *testing.T) {
	f := externalFixture(t)
	ext := f.target(t, "ext")
	layout := domain.NewLayout(f.project, domain.ModeDebug)
	declined := layout.ObjectPath(ext, "two.cpp")

	f.ext.EXPECT().SetupTranslationSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.ext.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Toolchain, req domain.ExternalCompileRequest) (domain.ExternalCompileResult, error) {
			if req.Output == declined {
				return domain.ExternalCompileResult{Compilable: false}, nil
			}
			require.NoError(t, os.MkdirAll(dirOf(req.Output), 0o750))
			require.NoError(t, os.WriteFile(req.Output, []byte("obj"), 0o644))
			return domain.ExternalCompileResult{Compilable: true, OutputFiles: []string{req.Output}}, nil
		}).Times(2)

	ctx := context.Background()
	outcome, err := f.batch.Compile(ctx, ext, "one.cpp")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBuilt, outcome)
	outcome, err = f.batch.Compile(ctx, ext, "two.cpp")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, outcome)
	assert.True(t, f.table.NotCompilable(declined))

	// An unchanged declined source is not offered to the builder again.
	outcome, err = f.batch.Compile(ctx, ext, "two.cpp")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, outcome)

	f.ext.EXPECT().Link(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Toolchain, req domain.ExternalLinkRequest) (domain.ExternalLinkResult, error) {
			assert.Equal(t, []string{layout.ObjectPath(ext, "one.cpp")}, req.Objects)
			return domain.ExternalLinkResult{OutputFiles: []string{req.Output}}, nil
		}).Times(1)
	outcome, err = f.batch.Link(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBuilt, outcome)
}
