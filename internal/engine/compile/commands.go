// Package compile turns stale targets into compiler, archiver and linker
// invocations and tracks the outcome of a build batch.
package compile

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/busy/internal/core/domain"
)

const (
	wholeArchive   = "-Wl,--whole-archive"
	noWholeArchive = "-Wl,--no-whole-archive"
)

// Commands builds argument vectors for one project graph and layout.
type Commands struct {
	graph  *domain.Graph
	layout domain.Layout
}

// NewCommands creates a Commands.
func NewCommands(g *domain.Graph, layout domain.Layout) *Commands {
	return &Commands{graph: g, layout: layout}
}

// Layout returns the artifact layout the commands write to.
func (c *Commands) Layout() domain.Layout {
	return c.layout
}

// Fingerprint hashes an argument vector.
func Fingerprint(argv []string) uint64 {
	return xxhash.Sum64String(strings.Join(argv, "\x00"))
}

// CompileArgs returns the compiler invocation turning file into its object.
func (c *Commands) CompileArgs(t *domain.BuildTarget, tc *domain.Toolchain, file string) ([]string, error) {
	compiler, err := tc.CompilerFor(languageOf(t, file))
	if err != nil {
		return nil, err
	}
	obj := c.layout.ObjectPath(t, file)

	args := slices.Clone(compiler.Args)
	args = append(args, "-c", c.layout.SourcePath(t, file), "-o", obj)
	args = append(args, c.layout.Mode.Flags()...)
	if t.Kind.IsLibrary() {
		args = append(args, "-fPIC")
	}
	args = append(args, "-MD", "-MF", c.layout.DepfilePath(t, file))
	for _, d := range c.Defines(t) {
		args = append(args, "-D"+d)
	}
	local, system, legacy := c.IncludePaths(t)
	for _, p := range local {
		args = append(args, "-I", p)
	}
	for _, p := range system {
		args = append(args, "-isystem", p)
	}
	for _, p := range legacy {
		args = append(args, "-isystem", p)
	}
	return append(args, compiler.PostOptions...), nil
}

// languageOf picks the language a file compiles as. C sources of a C++
// target still compile with the C compiler.
func languageOf(t *domain.BuildTarget, file string) domain.Language {
	if strings.EqualFold(filepath.Ext(file), ".c") {
		return domain.LanguageC
	}
	if t.Language == domain.LanguageC {
		return domain.LanguageC
	}
	return domain.LanguageCXX
}

// Defines returns one symbol for t and each target in its dependency closure.
func (c *Commands) Defines(t *domain.BuildTarget) []string {
	defines := []string{t.DefineName()}
	id, ok := c.graph.TargetID(t.Name)
	if !ok {
		return defines
	}
	for _, dep := range c.graph.Closure(id, nil) {
		defines = append(defines, dep.DefineName())
	}
	return defines
}

// IncludePaths returns the local, system and legacy include directories for t:
// its own first, then those of its dependency closure, each list deduplicated.
func (c *Commands) IncludePaths(t *domain.BuildTarget) (local, system, legacy []string) {
	targets := []*domain.BuildTarget{t}
	if id, ok := c.graph.TargetID(t.Name); ok {
		targets = append(targets, c.graph.Closure(id, nil)...)
	}
	for _, tgt := range targets {
		dir := c.layout.TargetDir(tgt)
		for _, p := range tgt.IncludePaths {
			local = appendUnique(local, resolve(dir, p))
		}
		for _, p := range tgt.SystemIncludePaths {
			system = appendUnique(system, resolve(dir, p))
		}
		for _, pair := range tgt.LegacyIncludePaths {
			legacy = appendUnique(legacy, resolve(dir, pair.Path))
		}
	}
	return local, system, legacy
}

// Objects returns the object files of t in source order.
func (c *Commands) Objects(t *domain.BuildTarget) []string {
	sources := t.Sources.Compilable()
	objs := make([]string, len(sources))
	for i, f := range sources {
		objs[i] = c.layout.ObjectPath(t, f)
	}
	return objs
}

// ArchiveArgs returns the archiver invocation building t's static library.
func (c *Commands) ArchiveArgs(t *domain.BuildTarget, tc *domain.Toolchain) []string {
	args := slices.Clone(tc.Archivist.Args)
	args = append(args, "rcs", c.layout.ArtifactPath(t))
	args = append(args, c.Objects(t)...)
	return append(args, tc.Archivist.PostOptions...)
}

// LinkArgs returns the linker invocation producing t's shared library or executable.
//
// Shared libraries wrap every static dependency in whole-archive flags so its
// symbols are exported; executables only do so for dependencies asking for it.
// System libraries are linked for t and its static dependencies only; dynamic
// dependencies bring their own.
func (c *Commands) LinkArgs(t *domain.BuildTarget, tc *domain.Toolchain) ([]string, error) {
	linker, err := tc.Linker(t.Language)
	if err != nil {
		return nil, err
	}
	deps := c.LinkDependencies(t)
	shared := t.Kind == domain.KindSharedLibrary

	args := slices.Clone(linker.Args)
	if shared {
		args = append(args, "-shared")
	}
	args = append(args, "-o", c.layout.ArtifactPath(t))
	args = append(args, c.Objects(t)...)

	for _, dep := range deps.Static {
		archive := c.layout.ArtifactPath(dep)
		if shared || dep.WholeArchive {
			args = append(args, wholeArchive, archive, noWholeArchive)
		} else {
			args = append(args, archive)
		}
	}

	var rpaths []string
	for _, dep := range deps.Dynamic {
		dir := c.libraryDir(dep)
		if dir != "" {
			args = append(args, "-L", dir)
			if dep.Kind == domain.KindSharedLibrary && !dep.Installed {
				rpaths = appendUnique(rpaths, dir)
			}
		}
		args = append(args, "-l"+dep.Name)
	}
	for _, dir := range rpaths {
		args = append(args, "-Wl,-rpath,"+dir)
	}

	var sysLibs []string
	for _, tgt := range append([]*domain.BuildTarget{t}, deps.Static...) {
		for _, lib := range tgt.SystemLibraries {
			sysLibs = appendUnique(sysLibs, lib)
		}
	}
	for _, lib := range sysLibs {
		args = append(args, "-l"+lib)
	}

	args = append(args, linker.PostOptions...)
	args = append(args, t.LinkingOptions...)

	var libPaths []string
	for _, tgt := range append([]*domain.BuildTarget{t}, deps.Static...) {
		dir := c.layout.TargetDir(tgt)
		for _, p := range tgt.SystemLibraryPaths {
			libPaths = appendUnique(libPaths, resolve(dir, p))
		}
	}
	for _, p := range libPaths {
		args = append(args, "-L", p)
	}
	return args, nil
}

// LinkInputs returns every file t's link step reads: its objects and the
// artifacts of its static and busy-built dynamic dependencies.
func (c *Commands) LinkInputs(t *domain.BuildTarget) []string {
	inputs := c.Objects(t)
	deps := c.LinkDependencies(t)
	for _, dep := range deps.Static {
		inputs = append(inputs, c.layout.ArtifactPath(dep))
	}
	for _, dep := range deps.Dynamic {
		if !dep.SkipsBuild() {
			inputs = append(inputs, c.layout.ArtifactPath(dep))
		}
	}
	return inputs
}

func (c *Commands) libraryDir(dep *domain.BuildTarget) string {
	switch {
	case dep.Installed:
		return ""
	case dep.Precompiled:
		return c.layout.TargetDir(dep)
	default:
		return c.layout.OutDir()
	}
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
