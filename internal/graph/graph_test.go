package graph

import (
	"fmt"
	"testing"

	"github.com/incdep/incdep/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(n int, edges ...[2]int) *Graph {
	files := make([]*models.File, n)
	for i := range files {
		files[i] = &models.File{ID: models.FileID(i), Rel: fmt.Sprintf("f%d.h", i)}
	}
	es := make([]*Edge, len(edges))
	for i, e := range edges {
		es[i] = &Edge{
			IncludeEdge: models.IncludeEdge{
				From:  models.FileID(e[0]),
				To:    models.FileID(e[1]),
				Line:  i + 1,
				State: models.StateResolved,
			},
		}
	}
	return New(files, es)
}

func bits(g *Graph, id int) []uint32 {
	return g.Reachable(models.FileID(id)).ToArray()
}

func TestReachableChain(t *testing.T) {
	g := build(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	assert.Equal(t, []uint32{1, 2, 3}, bits(g, 0))
	assert.Equal(t, []uint32{3}, bits(g, 2))
	assert.Empty(t, bits(g, 3))
}

func TestReachableExcludesSelfWithoutCycle(t *testing.T) {
	g := build(2, [2]int{0, 1})
	assert.NotContains(t, bits(g, 0), uint32(0))
}

func TestReachableIncludesSelfThroughCycle(t *testing.T) {
	g := build(2, [2]int{0, 1}, [2]int{1, 0})
	assert.Contains(t, bits(g, 0), uint32(0))
}

func TestReachableSkipsRemovedAndNotFound(t *testing.T) {
	g := build(3, [2]int{0, 1}, [2]int{0, 2})
	g.Edges[0].Removed = true
	g.Edges[1].State = models.StateNotFound
	assert.Empty(t, bits(g, 0))
}

func TestReachableDeepChain(t *testing.T) {
	// Deep enough that a recursive traversal would blow the stack.
	const n = 200000
	edges := make([][2]int, n-1)
	for i := range edges {
		edges[i] = [2]int{i, i + 1}
	}
	g := build(n, edges...)
	reach := g.Reachable(0)
	assert.Equal(t, uint64(n-1), reach.GetCardinality())
}

func TestAncestors(t *testing.T) {
	g := build(4, [2]int{0, 2}, [2]int{1, 2}, [2]int{2, 3})
	anc := g.Ancestors(3)
	assert.Equal(t, []uint32{0, 1, 2}, anc.ToArray())
}

func TestDepthOrdersLeavesFirst(t *testing.T) {
	g := build(4, [2]int{0, 1}, [2]int{1, 2}, [2]int{0, 3})
	depth := g.Depth()
	assert.Equal(t, 0, depth[2])
	assert.Equal(t, 0, depth[3])
	assert.Equal(t, 1, depth[1])
	assert.Equal(t, 2, depth[0])
}

func TestDepthCycleContributesZero(t *testing.T) {
	g := build(3, [2]int{0, 1}, [2]int{1, 0}, [2]int{2, 0})
	depth := g.Depth()
	assert.Equal(t, 0, depth[0])
	assert.Equal(t, 0, depth[1])
}

func TestCycles(t *testing.T) {
	g := build(5, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0}, [2]int{3, 4})
	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []models.FileID{0, 1, 2}, cycles[0])
}

func TestCyclesSelfInclude(t *testing.T) {
	g := build(2, [2]int{0, 0}, [2]int{0, 1})
	cycles := g.Cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []models.FileID{0}, cycles[0])
}

func TestComponents(t *testing.T) {
	g := build(5, [2]int{0, 1}, [2]int{1, 2}, [2]int{3, 4})
	comps := g.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, []models.FileID{0, 1, 2}, comps[0])
	assert.Equal(t, []models.FileID{3, 4}, comps[1])
}

func TestOutgoingOrderedByLine(t *testing.T) {
	files := []*models.File{
		{ID: 0}, {ID: 1}, {ID: 2},
	}
	edges := []*Edge{
		{IncludeEdge: models.IncludeEdge{From: 0, To: 2, Line: 9, State: models.StateResolved}},
		{IncludeEdge: models.IncludeEdge{From: 0, To: 1, Line: 3, State: models.StateResolved}},
	}
	g := New(files, edges)
	out := g.Outgoing(0)
	require.Len(t, out, 2)
	assert.Equal(t, 3, out[0].Line)
	assert.Equal(t, 9, out[1].Line)
}
