// Package domain contains the core build model of busy: targets, toolchains,
// the dependency graph between them and the records that make builds incremental.
package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// TargetKind classifies what a BuildTarget produces.
type TargetKind string

const (
	// KindStaticLibrary produces an archive of object files.
	KindStaticLibrary TargetKind = "static_library"
	// KindSharedLibrary produces a dynamically linked library.
	KindSharedLibrary TargetKind = "shared_library"
	// KindExecutable produces a program.
	KindExecutable TargetKind = "executable"
	// KindHeaderOnly produces nothing; it only contributes include paths and dependencies.
	KindHeaderOnly TargetKind = "header_only"
)

// ParseTargetKind validates a kind string.
func ParseTargetKind(s string) (TargetKind, error) {
	switch k := TargetKind(s); k {
	case KindStaticLibrary, KindSharedLibrary, KindExecutable, KindHeaderOnly:
		return k, nil
	default:
		return "", zerr.With(ErrInvalidTargetKind, "kind", s)
	}
}

// IsLibrary reports whether the kind produces a linkable library.
func (k TargetKind) IsLibrary() bool {
	return k == KindStaticLibrary || k == KindSharedLibrary
}

// Language is the source language a target is compiled as.
type Language string

const (
	// LanguageC compiles with the toolchain's C compiler.
	LanguageC Language = "c"
	// LanguageCXX compiles with the toolchain's C++ compiler.
	LanguageCXX Language = "c++"
)

// ParseLanguage validates a language string.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(s); l {
	case LanguageC, LanguageCXX:
		return l, nil
	case "cxx", "cpp":
		return LanguageCXX, nil
	default:
		return "", zerr.With(ErrInvalidLanguage, "language", s)
	}
}

// IncludePair maps a local include name to a directory on disk.
type IncludePair struct {
	Name string
	Path string
}

// SourceFiles holds a target's files partitioned by extension.
type SourceFiles struct {
	C       []string
	CXX     []string
	Headers []string
}

// Compilable returns the C and C++ sources in a stable order.
func (s SourceFiles) Compilable() []string {
	out := make([]string, 0, len(s.C)+len(s.CXX))
	out = append(out, s.C...)
	return append(out, s.CXX...)
}

// PartitionSources splits files into C, C++ and header sources.
// Files with unknown extensions are dropped.
func PartitionSources(files []string) SourceFiles {
	var s SourceFiles
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".c":
			s.C = append(s.C, f)
		case ".cc", ".cpp", ".cxx", ".c++":
			s.CXX = append(s.CXX, f)
		case ".h", ".hh", ".hpp", ".hxx", ".inl":
			s.Headers = append(s.Headers, f)
		}
	}
	return s
}

// BuildTarget describes one buildable unit. It is immutable once a build starts.
type BuildTarget struct {
	Name         string
	Path         string
	Kind         TargetKind
	Language     Language
	Dependencies []string

	// Precompiled and Installed targets are never compiled or linked by busy.
	Precompiled bool
	Installed   bool

	Sources SourceFiles

	IncludePaths       []string
	SystemIncludePaths []string
	// LegacyIncludePaths come from a pre-existing non-busy build description.
	// They are passed as system includes after every other path.
	LegacyIncludePaths []IncludePair

	SystemLibraries    []string
	SystemLibraryPaths []string
	LinkingOptions     []string
	WholeArchive       bool

	// Toolchain overrides Project.DefaultToolchain when set.
	Toolchain string
}

// SkipsBuild reports whether the target produces no artifact of its own.
func (t *BuildTarget) SkipsBuild() bool {
	return t.Precompiled || t.Installed || t.Kind == KindHeaderOnly
}

// DefineName returns the preprocessor symbol announcing this target, e.g. BUSY_LIB_NET.
func (t *BuildTarget) DefineName() string {
	var b strings.Builder
	b.WriteString("BUSY_")
	for _, r := range t.Name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
