package domain

import (
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the build description file looked up from the working directory.
	ConfigFileName = "busy.yaml"

	// StateDirName is the per-project state directory.
	StateDirName = ".busy"

	// DefaultBuildDir is where artifacts go unless build_dir overrides it.
	DefaultBuildDir = StateDirName + "/out"

	// DefaultStorePath is where FileStat records are persisted.
	DefaultStorePath = StateDirName + "/store"

	// FileStatsFileName is the file inside the store holding every FileStat.
	FileStatsFileName = "filestats.json"
)

// Layout computes artifact paths for one project and build mode.
type Layout struct {
	Root     string
	BuildDir string
	Mode     BuildMode
}

// NewLayout returns the layout for a project. A relative build dir is resolved against the root.
func NewLayout(p *Project, mode BuildMode) Layout {
	dir := p.BuildDir
	if dir == "" {
		dir = DefaultBuildDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.Root, dir)
	}
	return Layout{Root: p.Root, BuildDir: dir, Mode: mode}
}

// OutDir is the directory holding linked artifacts for the mode.
func (l Layout) OutDir() string {
	return filepath.Join(l.BuildDir, l.Mode.String())
}

// SourcePath resolves a source file of t to an absolute path.
func (l Layout) SourcePath(t *BuildTarget, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.TargetDir(t), file)
}

// TargetDir is the absolute source root of t.
func (l Layout) TargetDir(t *BuildTarget) string {
	if filepath.IsAbs(t.Path) {
		return t.Path
	}
	return filepath.Join(l.Root, t.Path)
}

// ObjectPath is the object file produced from file.
func (l Layout) ObjectPath(t *BuildTarget, file string) string {
	rel := file
	if filepath.IsAbs(file) {
		if r, err := filepath.Rel(l.TargetDir(t), file); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		} else {
			rel = strings.TrimPrefix(filepath.ToSlash(file), "/")
		}
	}
	return filepath.Join(l.OutDir(), "obj", t.Name, confine(rel)+".o")
}

// confine rewrites ".." segments so a source outside the target directory
// still maps below the target's object directory.
func confine(rel string) string {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	for i, p := range parts {
		if p == ".." {
			parts[i] = "__"
		}
	}
	return filepath.FromSlash(strings.Join(parts, "/"))
}

// DepfilePath is the compiler-emitted dependency file next to the object.
func (l Layout) DepfilePath(t *BuildTarget, file string) string {
	return strings.TrimSuffix(l.ObjectPath(t, file), ".o") + ".d"
}

// ArtifactPath is the linked output of t, or "" when t produces none.
func (l Layout) ArtifactPath(t *BuildTarget) string {
	switch t.Kind {
	case KindStaticLibrary:
		return filepath.Join(l.OutDir(), t.Name+".a")
	case KindSharedLibrary:
		return filepath.Join(l.OutDir(), "lib"+t.Name+".so")
	case KindExecutable:
		return filepath.Join(l.OutDir(), t.Name)
	default:
		return ""
	}
}

// StoreDir is the FileStat store directory.
func (l Layout) StoreDir() string {
	return filepath.Join(l.Root, DefaultStorePath)
}
