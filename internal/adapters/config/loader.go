// Package config provides the busy.yaml loader.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.trai.ch/busy/internal/adapters/fs"
	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/busy/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// defaultToolchainName is used when busy.yaml declares no toolchain at all.
const defaultToolchainName = "gcc"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(schemaURL, schemaJSON)
})

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	Walker *fs.Walker
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Walker: fs.NewWalker()}
}

// Load finds busy.yaml at or above path and converts it into a domain.Project.
func (l *Loader) Load(path string) (*domain.Project, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- configPath is discovered from a user supplied location
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	if err := validate(data); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	var busyfile Busyfile
	if err := yaml.Unmarshal(data, &busyfile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	return l.toProject(filepath.Dir(configPath), &busyfile)
}

// findConfiguration returns path itself when it names a file, otherwise the
// first busy.yaml found walking up from path.
func findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", zerr.With(domain.ErrConfigNotFound, "path", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}

	currentDir := abs
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", abs)
}

// validate checks the raw document against the embedded schema.
// YAML is round-tripped through JSON so the validator sees JSON types only.
func validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if raw == nil {
		return zerr.With(domain.ErrConfigInvalid, "reason", "empty document")
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	schema, err := compiledSchema()
	if err != nil {
		return zerr.Wrap(err, "failed to compile config schema")
	}
	if err := schema.Validate(doc); err != nil {
		return zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}
	return nil
}

func (l *Loader) toProject(root string, busyfile *Busyfile) (*domain.Project, error) {
	project := &domain.Project{
		Root:             filepath.Clean(root),
		BuildDir:         busyfile.BuildDir,
		Targets:          domain.NewTargetRegistry(),
		Toolchains:       make(map[string]*domain.Toolchain, len(busyfile.Toolchains)),
		DefaultToolchain: busyfile.DefaultToolchain,
	}

	for name, dto := range busyfile.Toolchains {
		project.Toolchains[name] = buildToolchain(name, dto)
	}
	if len(project.Toolchains) == 0 {
		project.Toolchains[defaultToolchainName] = &domain.Toolchain{
			Name:      defaultToolchainName,
			C:         domain.Command{Args: []string{"gcc"}},
			CXX:       domain.Command{Args: []string{"g++"}},
			Archivist: domain.Command{Args: []string{"ar"}},
		}
	}
	if err := resolveDefaultToolchain(project); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(busyfile.Targets))
	for name := range busyfile.Targets {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		target, err := l.buildTarget(project.Root, name, busyfile.Targets[name])
		if err != nil {
			return nil, zerr.With(err, "target", name)
		}
		if err := project.Targets.Add(target); err != nil {
			return nil, err
		}
	}

	return project, nil
}

func buildToolchain(name string, dto ToolchainDTO) *domain.Toolchain {
	return &domain.Toolchain{
		Name:      name,
		C:         domain.Command{Args: dto.C.Command, PostOptions: dto.C.PostOptions},
		CXX:       domain.Command{Args: dto.CXX.Command, PostOptions: dto.CXX.PostOptions},
		Archivist: archivist(dto.Archivist),
		External:  dto.External,
	}
}

func archivist(dto CommandDTO) domain.Command {
	if len(dto.Command) == 0 {
		return domain.Command{Args: []string{"ar"}, PostOptions: dto.PostOptions}
	}
	return domain.Command{Args: dto.Command, PostOptions: dto.PostOptions}
}

func resolveDefaultToolchain(project *domain.Project) error {
	if project.DefaultToolchain != "" {
		if _, ok := project.Toolchains[project.DefaultToolchain]; !ok {
			return zerr.With(domain.ErrUnknownToolchain, "toolchain", project.DefaultToolchain)
		}
		return nil
	}
	if len(project.Toolchains) == 1 {
		for name := range project.Toolchains {
			project.DefaultToolchain = name
		}
		return nil
	}
	return zerr.With(domain.ErrConfigInvalid, "reason", "default_toolchain is required when several toolchains are declared")
}

func (l *Loader) buildTarget(root, name string, dto TargetDTO) (*domain.BuildTarget, error) {
	kind, err := domain.ParseTargetKind(dto.Kind)
	if err != nil {
		return nil, err
	}
	language := domain.LanguageCXX
	if dto.Language != "" {
		if language, err = domain.ParseLanguage(dto.Language); err != nil {
			return nil, err
		}
	}

	path := dto.Path
	if path == "" {
		path = name
	}

	target := &domain.BuildTarget{
		Name:               name,
		Path:               filepath.Clean(path),
		Kind:               kind,
		Language:           language,
		Dependencies:       dto.Dependencies,
		Precompiled:        dto.Precompiled,
		Installed:          dto.Installed,
		IncludePaths:       dto.IncludePaths,
		SystemIncludePaths: dto.SystemIncludePaths,
		SystemLibraries:    dto.SystemLibraries,
		SystemLibraryPaths: dto.SystemLibraryPaths,
		LinkingOptions:     dto.LinkingOptions,
		WholeArchive:       dto.WholeArchive,
		Toolchain:          dto.Toolchain,
	}
	for _, pair := range dto.LegacyIncludePaths {
		target.LegacyIncludePaths = append(target.LegacyIncludePaths, domain.IncludePair{Name: pair.Name, Path: pair.Path})
	}

	if target.SkipsBuild() && kind != domain.KindHeaderOnly {
		if len(dto.Sources) > 0 {
			l.Logger.Warn("sources of prebuilt target " + name + " are ignored")
		}
		return target, nil
	}

	dir := target.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	files, err := l.expandSources(dir, dto.Sources)
	if err != nil {
		return nil, err
	}
	target.Sources = domain.PartitionSources(files)
	return target, nil
}

// expandSources resolves source patterns relative to dir. A "**" segment spans
// any number of directories. Literal names are kept even when missing so the
// compiler reports them.
func (l *Loader) expandSources(dir string, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			add(filepath.Clean(pattern))
			continue
		}
		matches, err := l.Walker.Glob(dir, pattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceGlobFailed.Error()), "pattern", pattern)
		}
		if len(matches) == 0 {
			l.Logger.Warn("source pattern " + pattern + " matched no files in " + dir)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[\`)
}
