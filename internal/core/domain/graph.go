package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// NodeKind tags the entity a graph node carries.
type NodeKind uint8

const (
	// NodeTarget carries a *BuildTarget.
	NodeTarget NodeKind = iota
	// NodeToolchain carries a *Toolchain.
	NodeToolchain
	// NodeFlavor carries a *Flavor.
	NodeFlavor
)

func (k NodeKind) String() string {
	switch k {
	case NodeTarget:
		return "target"
	case NodeToolchain:
		return "toolchain"
	case NodeFlavor:
		return "flavor"
	default:
		return "unknown"
	}
}

// NodeID is a stable index into a Graph's node arena.
type NodeID int

// Node is one entry of the graph. Exactly one entity field is set, matching Kind.
type Node struct {
	Kind      NodeKind
	Target    *BuildTarget
	Toolchain *Toolchain
	Flavor    *Flavor
}

// Name returns the name of the carried entity.
func (n Node) Name() string {
	switch n.Kind {
	case NodeTarget:
		return n.Target.Name
	case NodeToolchain:
		return n.Toolchain.Name
	case NodeFlavor:
		return n.Flavor.Name
	default:
		return ""
	}
}

// Entity is the closed set of types a graph node can carry.
type Entity interface {
	*BuildTarget | *Toolchain | *Flavor
}

// Graph is a directed graph over build entities. An edge (a, b) means
// "a depends on / is produced with b". Nodes live in an arena and are
// addressed by NodeID; edges store index pairs.
type Graph struct {
	nodes []Node
	out   [][]NodeID
	in    [][]NodeID

	targets map[string]NodeID
	order   []NodeID
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{targets: make(map[string]NodeID)}
}

func (g *Graph) add(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// AddTarget adds a target node. Target names are unique within a graph.
func (g *Graph) AddTarget(t *BuildTarget) (NodeID, error) {
	if _, exists := g.targets[t.Name]; exists {
		return 0, zerr.With(ErrTargetAlreadyExists, "target", t.Name)
	}
	id := g.add(Node{Kind: NodeTarget, Target: t})
	g.targets[t.Name] = id
	return id, nil
}

// AddToolchain adds a toolchain node.
func (g *Graph) AddToolchain(tc *Toolchain) NodeID {
	return g.add(Node{Kind: NodeToolchain, Toolchain: tc})
}

// AddFlavor adds a flavor node.
func (g *Graph) AddFlavor(f *Flavor) NodeID {
	return g.add(Node{Kind: NodeFlavor, Flavor: f})
}

// AddEdge records that from depends on to.
func (g *Graph) AddEdge(from, to NodeID) {
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node stored under id.
func (g *Graph) Node(id NodeID) Node {
	return g.nodes[id]
}

// TargetID looks up the node of a named target.
func (g *Graph) TargetID(name string) (NodeID, bool) {
	id, ok := g.targets[name]
	return id, ok
}

// Target looks up a named target.
func (g *Graph) Target(name string) (*BuildTarget, bool) {
	id, ok := g.targets[name]
	if !ok {
		return nil, false
	}
	return g.nodes[id].Target, true
}

// Outgoing returns the direct successors of id in insertion order.
func (g *Graph) Outgoing(id NodeID) []NodeID {
	return g.out[id]
}

// Incoming returns the direct predecessors of id in insertion order.
func (g *Graph) Incoming(id NodeID) []NodeID {
	return g.in[id]
}

func entityOf[T Entity](n Node) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case *BuildTarget:
		if n.Kind == NodeTarget {
			return any(n.Target).(T), true
		}
	case *Toolchain:
		if n.Kind == NodeToolchain {
			return any(n.Toolchain).(T), true
		}
	case *Flavor:
		if n.Kind == NodeFlavor {
			return any(n.Flavor).(T), true
		}
	}
	return zero, false
}

// OutgoingOfType returns the first successor of id carrying a T.
// It fails with ErrEntityNotFound when there is none.
func OutgoingOfType[T Entity](g *Graph, id NodeID) (T, error) {
	for _, to := range g.out[id] {
		if e, ok := entityOf[T](g.nodes[to]); ok {
			return e, nil
		}
	}
	var zero T
	err := zerr.With(ErrEntityNotFound, "node", g.nodes[id].Name())
	return zero, zerr.With(err, "kind", kindName[T]())
}

// IncomingOfType returns every direct predecessor of id carrying a T.
func IncomingOfType[T Entity](g *Graph, id NodeID) []T {
	var out []T
	for _, from := range g.in[id] {
		if e, ok := entityOf[T](g.nodes[from]); ok {
			out = append(out, e)
		}
	}
	return out
}

func kindName[T Entity]() string {
	var zero T
	switch any(zero).(type) {
	case *BuildTarget:
		return NodeTarget.String()
	case *Toolchain:
		return NodeToolchain.String()
	default:
		return NodeFlavor.String()
	}
}

// VisitIncoming walks every transitive predecessor of id breadth-first.
// Each reachable node is visited exactly once, however many paths lead to it.
// The start node itself is not visited.
func (g *Graph) VisitIncoming(id NodeID, visit func(NodeID)) {
	seen := make([]bool, len(g.nodes))
	seen[id] = true
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, from := range g.in[cur] {
			if seen[from] {
				continue
			}
			seen[from] = true
			visit(from)
			queue = append(queue, from)
		}
	}
}

// DirectDependencies returns the targets id depends on directly, in declaration order.
func (g *Graph) DirectDependencies(id NodeID) []*BuildTarget {
	var out []*BuildTarget
	for _, to := range g.out[id] {
		if n := g.nodes[to]; n.Kind == NodeTarget {
			out = append(out, n.Target)
		}
	}
	return out
}

// Closure returns every target reachable from id through target edges,
// depth-first in declaration order, each once. id itself is excluded.
// When stop reports true for a target, that target is included but not descended into.
func (g *Graph) Closure(id NodeID, stop func(*BuildTarget) bool) []*BuildTarget {
	seen := map[NodeID]bool{id: true}
	var out []*BuildTarget
	var walk func(NodeID)
	walk = func(cur NodeID) {
		for _, to := range g.out[cur] {
			n := g.nodes[to]
			if n.Kind != NodeTarget || seen[to] {
				continue
			}
			seen[to] = true
			out = append(out, n.Target)
			if stop != nil && stop(n.Target) {
				continue
			}
			walk(to)
		}
	}
	walk(id)
	return out
}

// Validate checks the target edges for cycles and computes a topological
// order in which every target follows its dependencies.
func (g *Graph) Validate() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(g.nodes))
	g.order = g.order[:0]
	var path []NodeID

	var visit func(NodeID) error
	visit = func(u NodeID) error {
		state[u] = visiting
		path = append(path, u)
		for _, v := range g.out[u] {
			if g.nodes[v].Kind != NodeTarget {
				continue
			}
			switch state[v] {
			case visiting:
				return g.cycleError(path, v)
			case unvisited:
				if err := visit(v); err != nil {
					return err
				}
			}
		}
		state[u] = visited
		path = path[:len(path)-1]
		g.order = append(g.order, u)
		return nil
	}

	for id, n := range g.nodes {
		if n.Kind != NodeTarget || state[id] != unvisited {
			continue
		}
		if err := visit(NodeID(id)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) cycleError(path []NodeID, dep NodeID) error {
	start := 0
	for i, id := range path {
		if id == dep {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, id := range path[start:] {
		names = append(names, g.nodes[id].Name())
	}
	names = append(names, g.nodes[dep].Name())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(names, " -> "))
}

// TopologicalTargets returns targets with dependencies before dependents.
// It assumes Validate has been called and returned nil.
func (g *Graph) TopologicalTargets() []*BuildTarget {
	out := make([]*BuildTarget, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Target)
	}
	return out
}
