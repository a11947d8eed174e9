// Package graph holds the mutable include graph the detector and planner
// operate on. Files and edges are interned once; analysis passes mutate
// edge verdicts in place and recompute reachability as edges are removed.
package graph

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/incdep/incdep/pkg/models"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Edge is one include directive in the working graph.
type Edge struct {
	models.IncludeEdge
	// Removed marks a tentative or committed removal. Removed edges are
	// invisible to reachability.
	Removed bool
}

// Usable reports whether the edge currently contributes to reachability.
func (e *Edge) Usable() bool {
	return !e.Removed && e.State != models.StateNotFound
}

// Graph is the working include graph.
type Graph struct {
	Files []*models.File
	Edges []*Edge

	// fwd[i] holds file i's outgoing edges in line order; rev[i] the
	// incoming ones.
	fwd [][]*Edge
	rev [][]*Edge
}

// New builds a working graph. Files must be indexed by their own ID.
func New(files []*models.File, edges []*Edge) *Graph {
	g := &Graph{
		Files: files,
		Edges: edges,
		fwd:   make([][]*Edge, len(files)),
		rev:   make([][]*Edge, len(files)),
	}
	for _, e := range edges {
		g.fwd[e.From] = append(g.fwd[e.From], e)
		if e.State != models.StateNotFound {
			g.rev[e.To] = append(g.rev[e.To], e)
		}
	}
	for _, out := range g.fwd {
		sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	}
	return g
}

// Outgoing returns file id's edges in line order.
func (g *Graph) Outgoing(id models.FileID) []*Edge {
	return g.fwd[id]
}

// Incoming returns the edges pointing at file id.
func (g *Graph) Incoming(id models.FileID) []*Edge {
	return g.rev[id]
}

// Reachable computes the set of files transitively reachable from start
// through usable edges, excluding start itself unless it is reachable
// through a cycle. Traversal is iterative with an explicit stack so deep
// include chains cannot overflow.
func (g *Graph) Reachable(start models.FileID) *roaring.Bitmap {
	reach := roaring.New()
	visited := roaring.New()
	stack := make([]models.FileID, 0, 16)
	stack = append(stack, start)
	visited.Add(uint32(start))
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.fwd[cur] {
			if !e.Usable() {
				continue
			}
			reach.Add(uint32(e.To))
			if visited.CheckedAdd(uint32(e.To)) {
				stack = append(stack, e.To)
			}
		}
	}
	return reach
}

// ReachableVia computes the files reachable from start when only the
// given outgoing edge of start is followed at the first hop. Used to
// attribute coverage to individual sibling includes.
func (g *Graph) ReachableVia(e *Edge) *roaring.Bitmap {
	reach := roaring.New()
	if !e.Usable() {
		return reach
	}
	reach.Add(uint32(e.To))
	reach.Or(g.Reachable(e.To))
	return reach
}

// Ancestors returns every file that can reach id through usable edges.
func (g *Graph) Ancestors(id models.FileID) *roaring.Bitmap {
	anc := roaring.New()
	stack := []models.FileID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.rev[cur] {
			if !e.Usable() {
				continue
			}
			if anc.CheckedAdd(uint32(e.From)) {
				stack = append(stack, e.From)
			}
		}
	}
	return anc
}

// Depth returns, for every file, the length of the longest usable path to
// a file with no usable outgoing edges. Files on cycles get depth 0 so
// ordering stays total; iterative Kahn-style peeling, no recursion.
func (g *Graph) Depth() []int {
	depth := make([]int, len(g.Files))
	outdeg := make([]int, len(g.Files))
	for i := range g.Files {
		for _, e := range g.fwd[i] {
			if e.Usable() {
				outdeg[i]++
			}
		}
	}
	queue := make([]models.FileID, 0, len(g.Files))
	for i, d := range outdeg {
		if d == 0 {
			queue = append(queue, models.FileID(i))
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.rev[cur] {
			if !e.Usable() {
				continue
			}
			if d := depth[cur] + 1; d > depth[e.From] {
				depth[e.From] = d
			}
			outdeg[e.From]--
			if outdeg[e.From] == 0 {
				queue = append(queue, e.From)
			}
		}
	}
	// Files still holding out-degree sit on a cycle; their depth stays 0.
	for i, d := range outdeg {
		if d > 0 {
			depth[i] = 0
		}
	}
	return depth
}

// Cycles returns every include cycle as a list of file ids, including
// length-1 self-includes. Uses Tarjan's strongly connected components.
func (g *Graph) Cycles() [][]models.FileID {
	dg := simple.NewDirectedGraph()
	for i := range g.Files {
		dg.AddNode(simple.Node(int64(i)))
	}
	selfLoops := make(map[models.FileID]bool)
	for _, e := range g.Edges {
		if e.State == models.StateNotFound {
			continue
		}
		if e.From == e.To {
			selfLoops[e.From] = true
			continue // simple graphs reject self-edges
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(e.From)), simple.Node(int64(e.To))))
	}

	var cycles [][]models.FileID
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]models.FileID, len(scc))
		for i, n := range scc {
			cycle[i] = models.FileID(n.ID())
		}
		sort.Slice(cycle, func(i, j int) bool { return cycle[i] < cycle[j] })
		cycles = append(cycles, cycle)
	}
	for id := range selfLoops {
		cycles = append(cycles, []models.FileID{id})
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// Components partitions the files into weakly connected components. Each
// component can be planned independently.
func (g *Graph) Components() [][]models.FileID {
	ug := simple.NewUndirectedGraph()
	for i := range g.Files {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges {
		if e.State == models.StateNotFound || e.From == e.To {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(int64(e.From)), simple.Node(int64(e.To))))
	}

	comps := topo.ConnectedComponents(ug)
	out := make([][]models.FileID, len(comps))
	for i, comp := range comps {
		ids := make([]models.FileID, len(comp))
		for j, n := range comp {
			ids[j] = models.FileID(n.ID())
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out[i] = ids
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Export snapshots the working graph into the wire model.
func (g *Graph) Export() models.Graph {
	files := make([]models.File, len(g.Files))
	for i, f := range g.Files {
		files[i] = *f
	}
	edges := make([]models.IncludeEdge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = e.IncludeEdge
	}
	return models.Graph{Files: files, Edges: edges}
}
