package toolchain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/adapters/toolchain"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var remote = &domain.Toolchain{Name: "remote", External: "/opt/bin/remote-builder"}

func ok(stdout string) domain.ProcessResult {
	return domain.ProcessResult{Stdout: []byte(stdout)}
}

func TestBuilder_Info(t *testing.T) {
	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().
		Run(gomock.Any(), []string{"/opt/bin/remote-builder", "info"}, "").
		Return(ok(`{"name": "remote", "languages": ["c", "c++"]}`), nil)

	info, err := toolchain.NewBuilder(proc).Info(context.Background(), remote)
	require.NoError(t, err)
	assert.Equal(t, "remote", info.Name)
	assert.True(t, info.Supports(domain.LanguageCXX))
	assert.True(t, info.Supports(domain.LanguageC))
}

func TestBuilder_SetupTranslationSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().
		Run(gomock.Any(), []string{
			"/opt/bin/remote-builder", "setup_translation_set",
			"--target", "net", "--language", "c++",
			"-I", "/proj/net/include",
			"-isystem", "/opt/zlib/include",
		}, "").
		Return(ok(""), nil)

	err := toolchain.NewBuilder(proc).SetupTranslationSet(context.Background(), remote, domain.TranslationSetRequest{
		Target:             "net",
		Language:           domain.LanguageCXX,
		IncludePaths:       []string{"/proj/net/include"},
		SystemIncludePaths: []string{"/opt/zlib/include"},
	})
	require.NoError(t, err)
}

func TestBuilder_Compile(t *testing.T) {
	req := domain.ExternalCompileRequest{
		Target:  "net",
		File:    "/proj/net/socket.cpp",
		Output:  "/proj/.busy/out/debug/obj/net/socket.cpp.o",
		Mode:    domain.ModeDebug,
		Defines: []string{"BUSY_NET"},
	}
	argv := []string{
		"/opt/bin/remote-builder", "compile",
		"--target", "net",
		"--file", "/proj/net/socket.cpp",
		"--output", "/proj/.busy/out/debug/obj/net/socket.cpp.o",
		"--mode", "debug",
		"-D", "BUSY_NET",
	}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		proc := mocks.NewMockProcess(ctrl)
		proc.EXPECT().Run(gomock.Any(), argv, "").Return(ok(`{
			"stdout": "",
			"dependencies": ["/proj/net/socket.h"],
			"cached": true,
			"compilable": true,
			"output_files": ["/proj/.busy/out/debug/obj/net/socket.cpp.o"]
		}`), nil)

		res, err := toolchain.NewBuilder(proc).Compile(context.Background(), remote, req)
		require.NoError(t, err)
		assert.True(t, res.Cached)
		assert.True(t, res.Compilable)
		assert.Equal(t, []string{"/proj/net/socket.h"}, res.Dependencies)
	})

	t.Run("Stderr Fails Despite Zero Exit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		proc := mocks.NewMockProcess(ctrl)
		proc.EXPECT().Run(gomock.Any(), argv, "").Return(domain.ProcessResult{
			Stdout: []byte(`{"compilable": true}`),
			Stderr: []byte("socket.cpp:3: expected ';'\n"),
		}, nil)

		res, err := toolchain.NewBuilder(proc).Compile(context.Background(), remote, req)
		require.ErrorContains(t, err, domain.ErrExternalToolFailed.Error())
		assert.Equal(t, "socket.cpp:3: expected ';'\n", res.Stderr)
	})

	t.Run("Structured Stderr Fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		proc := mocks.NewMockProcess(ctrl)
		proc.EXPECT().Run(gomock.Any(), argv, "").
			Return(ok(`{"stderr": "cannot open socket.h", "compilable": true}`), nil)

		res, err := toolchain.NewBuilder(proc).Compile(context.Background(), remote, req)
		require.ErrorContains(t, err, domain.ErrExternalToolFailed.Error())
		assert.Equal(t, "cannot open socket.h", res.Stderr)
	})

	t.Run("Non-Zero Exit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		proc := mocks.NewMockProcess(ctrl)
		proc.EXPECT().Run(gomock.Any(), argv, "").Return(domain.ProcessResult{ExitStatus: 2}, nil)

		_, err := toolchain.NewBuilder(proc).Compile(context.Background(), remote, req)
		require.ErrorContains(t, err, domain.ErrExternalToolFailed.Error())
	})

	t.Run("Malformed Answer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		proc := mocks.NewMockProcess(ctrl)
		proc.EXPECT().Run(gomock.Any(), argv, "").Return(ok("compiled!"), nil)

		res, err := toolchain.NewBuilder(proc).Compile(context.Background(), remote, req)
		require.ErrorContains(t, err, domain.ErrExternalToolResponse.Error())
		assert.Equal(t, "compiled!", res.Stdout)
	})
}

func TestBuilder_Link(t *testing.T) {
	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().
		Run(gomock.Any(), []string{
			"/opt/bin/remote-builder", "link",
			"--target", "app",
			"--kind", "executable",
			"--output", "/out/app",
			"--object", "/out/obj/app/main.cpp.o",
			"--library", "/out/libnet.so",
			"--system-library", "pthread",
			"--linking-option", "-Wl,--as-needed",
		}, "").
		Return(ok(`{"output_files": ["/out/app"]}`), nil)

	res, err := toolchain.NewBuilder(proc).Link(context.Background(), remote, domain.ExternalLinkRequest{
		Target:          "app",
		Kind:            domain.KindExecutable,
		Output:          "/out/app",
		Objects:         []string{"/out/obj/app/main.cpp.o"},
		Libraries:       []string{"/out/libnet.so"},
		SystemLibraries: []string{"pthread"},
		LinkingOptions:  []string{"-Wl,--as-needed"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/app"}, res.OutputFiles)
}

func TestBuilder_StartFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().Run(gomock.Any(), gomock.Any(), "").
		Return(domain.ProcessResult{}, domain.ErrProcessStartFailed)

	_, err := toolchain.NewBuilder(proc).Info(context.Background(), remote)
	require.ErrorContains(t, err, domain.ErrExternalToolFailed.Error())
}
