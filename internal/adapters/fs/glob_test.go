package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/busy/internal/adapters/fs"
	"go.trai.ch/busy/internal/core/domain"
)

func TestWalker_Glob(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir,
		"a.cpp",
		"lib/a.cpp",
		"lib/sub/b.cpp",
		"lib/sub/deeper/c.cpp",
		"lib/sub/b.h",
		"src/main.c",
		domain.StateDirName+"/gen/x.cpp",
	)
	w := fs.NewWalker()

	tests := []struct {
		pattern string
		want    []string
	}{
		{"lib/*.cpp", []string{"lib/a.cpp"}},
		{"lib/**/*.cpp", []string{"lib/a.cpp", "lib/sub/b.cpp", "lib/sub/deeper/c.cpp"}},
		{"**/*.cpp", []string{"a.cpp", "lib/a.cpp", "lib/sub/b.cpp", "lib/sub/deeper/c.cpp"}},
		{"lib/**", []string{"lib/a.cpp", "lib/sub/b.cpp", "lib/sub/b.h", "lib/sub/deeper/c.cpp"}},
		{"**/sub/*.h", []string{"lib/sub/b.h"}},
		{"**/*.rs", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := w.Glob(tmpDir, tt.pattern)
			require.NoError(t, err)
			want := make([]string, 0, len(tt.want))
			for _, p := range tt.want {
				want = append(want, filepath.FromSlash(p))
			}
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestWalker_Glob_BadPattern(t *testing.T) {
	_, err := fs.NewWalker().Glob(t.TempDir(), "src/**/[")
	require.ErrorIs(t, err, filepath.ErrBadPattern)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"**/*.cpp", "a.cpp", true},
		{"**/*.cpp", "x/y/a.cpp", true},
		{"src/**/main.c", "src/main.c", true},
		{"src/**/main.c", "src/a/b/main.c", true},
		{"src/**/main.c", "lib/main.c", false},
		{"*.cpp", "x/a.cpp", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			got, err := fs.Match(tt.pattern, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
