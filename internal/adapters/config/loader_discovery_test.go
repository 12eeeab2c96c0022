package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/adapters/config"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const minimalConfig = `
version: "1"
targets:
  lib:
    kind: header_only
`

func TestLoader_Discovery(t *testing.T) {
	t.Run("From Nested Directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := config.NewLoader(mocks.NewMockLogger(ctrl))

		root := t.TempDir()
		createFile(t, root, domain.ConfigFileName, minimalConfig)
		nested := filepath.Join(root, "lib", "src", "detail")
		createFile(t, nested, "x.h", "")

		project, err := loader.Load(nested)
		require.NoError(t, err)
		assert.Equal(t, root, project.Root)
	})

	t.Run("Nearest File Wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := config.NewLoader(mocks.NewMockLogger(ctrl))

		outer := t.TempDir()
		inner := filepath.Join(outer, "vendor", "zlib")
		createFile(t, outer, domain.ConfigFileName, minimalConfig)
		createFile(t, inner, domain.ConfigFileName, minimalConfig)

		project, err := loader.Load(inner)
		require.NoError(t, err)
		assert.Equal(t, inner, project.Root)
	})

	t.Run("Explicit File", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := config.NewLoader(mocks.NewMockLogger(ctrl))

		root := t.TempDir()
		createFile(t, root, "alt.yaml", minimalConfig)

		project, err := loader.Load(filepath.Join(root, "alt.yaml"))
		require.NoError(t, err)
		assert.Equal(t, root, project.Root)
	})

	t.Run("Not Found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := config.NewLoader(mocks.NewMockLogger(ctrl))

		_, err := loader.Load(t.TempDir())
		require.ErrorContains(t, err, domain.ErrConfigNotFound.Error())

		_, err = loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
	})
}
