package domain

import "go.trai.ch/zerr"

// BuildGraph constructs the validated dependency graph of a project for one flavor.
// Every target gets an edge to each declared dependency, to its toolchain and to the flavor.
func BuildGraph(p *Project, flavor *Flavor) (*Graph, error) {
	g := NewGraph()
	flavorID := g.AddFlavor(flavor)
	toolchains := make(map[string]NodeID)

	for t := range p.Targets.All() {
		if _, err := g.AddTarget(t); err != nil {
			return nil, err
		}
	}

	for t := range p.Targets.All() {
		id, _ := g.TargetID(t.Name)
		for _, dep := range t.Dependencies {
			depID, ok := g.TargetID(dep)
			if !ok {
				err := zerr.With(ErrMissingDependency, "target", t.Name)
				return nil, zerr.With(err, "dependency", dep)
			}
			g.AddEdge(id, depID)
		}

		tc, err := p.ToolchainFor(t)
		if err != nil {
			return nil, err
		}
		if len(t.Sources.Compilable()) > 0 && !t.SkipsBuild() {
			if _, err := tc.CompilerFor(t.Language); err != nil {
				err := zerr.With(ErrUnknownToolchain, "toolchain", tc.Name)
				err = zerr.With(err, "target", t.Name)
				return nil, zerr.With(err, "language", string(t.Language))
			}
		}
		tcID, ok := toolchains[tc.Name]
		if !ok {
			tcID = g.AddToolchain(tc)
			toolchains[tc.Name] = tcID
		}
		g.AddEdge(id, tcID)
		g.AddEdge(id, flavorID)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
