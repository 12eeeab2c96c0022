package compile

import (
	"slices"

	"go.trai.ch/busy/internal/core/domain"
)

// LinkDeps are the libraries a link step consumes, each ordered so a library
// precedes the libraries it depends on.
type LinkDeps struct {
	// Static archives built by busy, linked into the output.
	Static []*domain.BuildTarget
	// Dynamic libraries, including prebuilt ones, referenced with -l.
	Dynamic []*domain.BuildTarget
}

// LinkDependencies collects t's link inputs. Static libraries and header-only
// targets are descended through; shared and prebuilt libraries end the walk
// because they carry their own dependencies. Executables are ignored.
func (c *Commands) LinkDependencies(t *domain.BuildTarget) LinkDeps {
	id, ok := c.graph.TargetID(t.Name)
	if !ok {
		return LinkDeps{}
	}

	seen := map[string]bool{t.Name: true}
	var post []*domain.BuildTarget
	var walk func(domain.NodeID)
	walk = func(id domain.NodeID) {
		for _, dep := range c.graph.DirectDependencies(id) {
			if seen[dep.Name] {
				continue
			}
			seen[dep.Name] = true
			depID, _ := c.graph.TargetID(dep.Name)

			switch {
			case dep.Kind == domain.KindExecutable:
			case dep.Precompiled || dep.Installed:
				if dep.Kind.IsLibrary() {
					post = append(post, dep)
				}
			case dep.Kind == domain.KindHeaderOnly:
				walk(depID)
			case dep.Kind == domain.KindStaticLibrary:
				walk(depID)
				post = append(post, dep)
			case dep.Kind == domain.KindSharedLibrary:
				post = append(post, dep)
			}
		}
	}
	walk(id)
	slices.Reverse(post)

	var deps LinkDeps
	for _, dep := range post {
		if dep.Kind == domain.KindStaticLibrary && !dep.Precompiled && !dep.Installed {
			deps.Static = append(deps.Static, dep)
		} else {
			deps.Dynamic = append(deps.Dynamic, dep)
		}
	}
	return deps
}
