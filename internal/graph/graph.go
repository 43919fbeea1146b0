package graph

import (
	"sort"

	"importlens/internal/index"
)

// Edge links a file to a module it imports.
type Edge struct {
	From string       // File path
	To   string       // Module name
	Kind RelationKind // Relationship type
}

// ModuleUsage is a module with the files that import it.
type ModuleUsage struct {
	Module    string
	Importers []string
}

// Graph manages the file to module usage relation.
type Graph struct {
	Files []string
	Edges []Edge

	byModule map[string][]int
	byFile   map[string][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byModule: make(map[string][]int),
		byFile:   make(map[string][]int),
	}
}

// FromReport builds the graph of a report. A file importing the same module
// through several statements yields one edge per statement.
func FromReport(r *index.Report) *Graph {
	g := NewGraph()
	for _, f := range r.Files {
		g.Files = append(g.Files, f.Path)
		for _, stmt := range f.Statements {
			module, kind, ok := ParseStatement(stmt)
			if !ok {
				continue
			}
			g.AddEdge(Edge{From: f.Path, To: module, Kind: kind})
		}
	}
	return g
}

// AddEdge records an edge and indexes it.
func (g *Graph) AddEdge(e Edge) {
	g.byModule[e.To] = append(g.byModule[e.To], len(g.Edges))
	g.byFile[e.From] = append(g.byFile[e.From], len(g.Edges))
	g.Edges = append(g.Edges, e)
}

// Importers returns the files that import module, sorted and unique.
func (g *Graph) Importers(module string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, i := range g.byModule[module] {
		from := g.Edges[i].From
		if !seen[from] {
			seen[from] = true
			files = append(files, from)
		}
	}
	sort.Strings(files)
	return files
}

// Dependencies returns the modules a file imports, sorted and unique.
func (g *Graph) Dependencies(file string) []string {
	seen := make(map[string]bool)
	var modules []string
	for _, i := range g.byFile[file] {
		to := g.Edges[i].To
		if !seen[to] {
			seen[to] = true
			modules = append(modules, to)
		}
	}
	sort.Strings(modules)
	return modules
}

// Modules ranks every imported module by the number of files importing it,
// ties broken by name.
func (g *Graph) Modules() []ModuleUsage {
	out := make([]ModuleUsage, 0, len(g.byModule))
	for module := range g.byModule {
		out = append(out, ModuleUsage{Module: module, Importers: g.Importers(module)})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Importers) != len(out[j].Importers) {
			return len(out[i].Importers) > len(out[j].Importers)
		}
		return out[i].Module < out[j].Module
	})
	return out
}

// Wildcards returns the edges that collapsed a module into `*`.
func (g *Graph) Wildcards() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == RelationWildcard {
			out = append(out, e)
		}
	}
	return out
}
