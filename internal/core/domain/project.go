package domain

import (
	"iter"
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// TargetRegistry maps target names to targets. Names are unique.
type TargetRegistry struct {
	targets map[string]*BuildTarget
}

// NewTargetRegistry creates an empty registry.
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{targets: make(map[string]*BuildTarget)}
}

// Add registers a target. It returns an error if the name is taken or reserved.
func (r *TargetRegistry) Add(t *BuildTarget) error {
	if t.Name == "all" {
		return ErrReservedTargetName
	}
	if _, exists := r.targets[t.Name]; exists {
		return zerr.With(ErrTargetAlreadyExists, "target", t.Name)
	}
	r.targets[t.Name] = t
	return nil
}

// Get returns the named target.
func (r *TargetRegistry) Get(name string) (*BuildTarget, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Len returns the number of registered targets.
func (r *TargetRegistry) Len() int {
	return len(r.targets)
}

// Names returns all target names sorted.
func (r *TargetRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r.targets))
}

// All yields targets in name order.
func (r *TargetRegistry) All() iter.Seq[*BuildTarget] {
	return func(yield func(*BuildTarget) bool) {
		for _, name := range r.Names() {
			if !yield(r.targets[name]) {
				return
			}
		}
	}
}

// Project is a parsed build description.
type Project struct {
	// Root is the absolute directory holding busy.yaml.
	Root             string
	BuildDir         string
	Targets          *TargetRegistry
	Toolchains       map[string]*Toolchain
	DefaultToolchain string
}

// ToolchainFor resolves the toolchain compiling t.
func (p *Project) ToolchainFor(t *BuildTarget) (*Toolchain, error) {
	name := t.Toolchain
	if name == "" {
		name = p.DefaultToolchain
	}
	tc, ok := p.Toolchains[name]
	if !ok {
		err := zerr.With(ErrUnknownToolchain, "toolchain", name)
		err = zerr.With(err, "target", t.Name)
		return nil, zerr.With(err, "language", string(t.Language))
	}
	return tc, nil
}
