// Package dataset ships the built-in sample tables, the static relationship
// graph between them, and the importer that loads them (or external CSV
// files) into the active connection in dependency order.
package dataset

import (
	"sort"

	"sqlchat/internal/errs"
)

// Graph is a static dependency mapping between tables: an edge from A to B
// means A depends on B, so B must be created and populated before A.
type Graph struct {
	deps map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// AddDependency records that table depends on dependsOn.
// Both nodes are created on first mention; duplicate edges are ignored.
func (g *Graph) AddDependency(table, dependsOn string) {
	if _, ok := g.deps[dependsOn]; !ok {
		g.deps[dependsOn] = []string{}
	}
	for _, d := range g.deps[table] {
		if d == dependsOn {
			return
		}
	}
	g.deps[table] = append(g.deps[table], dependsOn)
}

// AddNode records a table with no dependencies.
func (g *Graph) AddNode(table string) {
	if _, ok := g.deps[table]; !ok {
		g.deps[table] = []string{}
	}
}

// Dependencies returns the tables the given table directly depends on.
func (g *Graph) Dependencies(table string) []string {
	return g.deps[table]
}

// Dependents returns the tables that directly depend on the given table.
func (g *Graph) Dependents(table string) []string {
	var out []string
	for t, deps := range g.deps {
		for _, d := range deps {
			if d == table {
				out = append(out, t)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Nodes returns every table in the graph, sorted.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.deps))
	for t := range g.deps {
		nodes = append(nodes, t)
	}
	sort.Strings(nodes)
	return nodes
}

// Closure returns the import set for a root table: the root itself, every
// table it directly depends on, and every table that directly depends on
// it. One hop in each direction — this mirrors the "import related tables"
// semantics the API exposes, not a full transitive closure.
// The result is sorted for determinism.
func (g *Graph) Closure(root string) []string {
	set := map[string]bool{root: true}
	for _, d := range g.Dependencies(root) {
		set[d] = true
	}
	for _, d := range g.Dependents(root) {
		set[d] = true
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Order topologically sorts the given tables so that every table appears
// after the tables it depends on. Edges leading outside the set are
// ignored. If the subgraph contains a cycle, Order returns the input set
// unchanged together with a CycleDetected error — callers decide whether
// best-effort ordering is acceptable.
func (g *Graph) Order(tables []string) ([]string, error) {
	inSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		inSet[t] = true
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(tables))

	var order []string
	var cyclic bool

	var visit func(t string)
	visit = func(t string) {
		if cyclic || state[t] == visited {
			return
		}
		if state[t] == visiting {
			// back-edge: the subgraph is not acyclic
			cyclic = true
			return
		}
		state[t] = visiting
		for _, dep := range g.deps[t] {
			if inSet[dep] {
				visit(dep)
			}
		}
		if cyclic {
			return
		}
		state[t] = visited
		order = append(order, t)
	}

	// Iterate a sorted copy so the output is deterministic.
	sorted := append([]string(nil), tables...)
	sort.Strings(sorted)
	for _, t := range sorted {
		visit(t)
		if cyclic {
			return tables, errs.New(errs.ErrKindCycleDetected, "relationship graph contains a cycle; returning unordered table set")
		}
	}
	return order, nil
}
