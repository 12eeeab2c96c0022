package scheduler

import (
	"slices"

	"go.trai.ch/busy/internal/core/domain"
	"go.trai.ch/zerr"
)

// PlanEntry is one target of a build plan.
type PlanEntry struct {
	Target    *domain.BuildTarget
	Toolchain string
	Artifact  string
	Sources   int
}

// Plan lists the targets a build of targets would visit, dependencies first.
func Plan(project *domain.Project, mode domain.BuildMode, targets []string) ([]PlanEntry, error) {
	graph, err := domain.BuildGraph(project, &domain.Flavor{Name: mode.String(), Mode: mode})
	if err != nil {
		return nil, err
	}
	selected, _, err := selectTargets(graph, project, targets)
	if err != nil {
		return nil, err
	}

	layout := domain.NewLayout(project, mode)
	var plan []PlanEntry
	for _, t := range graph.TopologicalTargets() {
		if !selected[t.Name] {
			continue
		}
		id, _ := graph.TargetID(t.Name)
		tc, err := domain.OutgoingOfType[*domain.Toolchain](graph, id)
		if err != nil {
			return nil, err
		}
		entry := PlanEntry{Target: t, Toolchain: tc.Name}
		if !t.SkipsBuild() {
			entry.Artifact = layout.ArtifactPath(t)
			entry.Sources = len(t.Sources.Compilable())
		}
		plan = append(plan, entry)
	}
	return plan, nil
}

// selectTargets resolves the requested names to the set of targets to build
// and the sorted names of every other target.
func selectTargets(graph *domain.Graph, project *domain.Project, names []string) (map[string]bool, []string, error) {
	selected := make(map[string]bool)
	if len(names) == 0 || slices.Contains(names, "all") {
		for _, name := range project.Targets.Names() {
			selected[name] = true
		}
		return selected, nil, nil
	}

	for _, name := range names {
		id, ok := graph.TargetID(name)
		if !ok {
			return nil, nil, zerr.With(domain.ErrTargetNotFound, "target", name)
		}
		selected[name] = true
		for _, dep := range graph.Closure(id, nil) {
			selected[dep.Name] = true
		}
	}

	var ignore []string
	for _, name := range project.Targets.Names() {
		if !selected[name] {
			ignore = append(ignore, name)
		}
	}
	return selected, ignore, nil
}
