package planner

import (
	"testing"

	"github.com/incdep/incdep/internal/detector"
	"github.com/incdep/incdep/internal/graph"
	"github.com/incdep/incdep/internal/symbols"
	"github.com/incdep/incdep/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(from, to, line int) *graph.Edge {
	return &graph.Edge{
		IncludeEdge: models.IncludeEdge{
			From:  models.FileID(from),
			To:    models.FileID(to),
			Line:  line,
			Raw:   "#include \"x.h\"",
			State: models.StateResolved,
		},
	}
}

func plan(files []*models.File, edges []*graph.Edge, minConfidence float64) (models.RemovalPlan, *graph.Graph) {
	g := graph.New(files, edges)
	idx := symbols.Build(files)
	det := detector.New(g, idx)
	det.Run()
	p := New(g, det, idx, minConfidence)
	p.Jobs = 1
	return p.Run(), g
}

func TestPlanRemovesUnjustifiedInclude(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "a.cpp", References: []string{"sqrt_fast"}},
		{ID: 1, Rel: "util.h", References: []string{"sqrt_fast"}},
		{ID: 2, Rel: "math.h", Provides: []string{"sqrt_fast"}},
	}
	edges := []*graph.Edge{
		edge(0, 1, 1),
		edge(0, 2, 2),
		edge(1, 2, 1),
	}
	result, _ := plan(files, edges, 0.8)

	require.Len(t, result.Removals, 1)
	assert.Equal(t, "a.cpp", result.Removals[0].File)
	assert.Equal(t, 1, result.Removals[0].Line)
	assert.Equal(t, models.VerdictRemoved, edges[0].Verdict)
	assert.True(t, edges[0].AutoRemovable)
	assert.Equal(t, 0, result.Reverted)
}

// h.h does not use x.h itself, but an includer of h.h depends on reaching
// x.h through it. The candidate must be reverted.
func TestPlanRevertsRemovalThatBreaksAncestor(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "h.h"},
		{ID: 1, Rel: "m.cpp", References: []string{"sym"}},
		{ID: 2, Rel: "x.h", Provides: []string{"sym"}},
	}
	edges := []*graph.Edge{
		edge(0, 2, 1), // h.h -> x.h
		edge(1, 0, 1), // m.cpp -> h.h
	}
	result, _ := plan(files, edges, 0.8)

	assert.Empty(t, result.Removals)
	assert.Equal(t, 1, result.Reverted)
	assert.Equal(t, models.VerdictNecessary, edges[0].Verdict)
	assert.False(t, edges[0].Removed)
	assert.False(t, edges[0].AutoRemovable)
	assert.NotEmpty(t, edges[0].Rationale)
}

func TestPlanReportsBelowThreshold(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "a.cpp"},
		{ID: 1, Rel: "config.h", Provides: []string{"FLAG"}, Macros: []string{"FLAG"}},
	}
	edges := []*graph.Edge{edge(0, 1, 1)}
	result, _ := plan(files, edges, 0.8)

	assert.Empty(t, result.Removals)
	require.Len(t, result.Reported, 1)
	assert.False(t, edges[0].AutoRemovable)
	assert.False(t, edges[0].Removed)
}

func TestPlanAmbiguousNeverAutoRemoved(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "a.cpp"},
		{ID: 1, Rel: "b.h"},
	}
	e := edge(0, 1, 1)
	e.State = models.StateAmbiguous
	result, _ := plan(files, []*graph.Edge{e}, 0.0)

	assert.Empty(t, result.Removals)
	require.Len(t, result.Reported, 1)
	assert.False(t, e.AutoRemovable)
}

func TestPlanOutputSortedByFileAndLine(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "a.cpp"},
		{ID: 1, Rel: "b.cpp"},
		{ID: 2, Rel: "dead.h"},
	}
	edges := []*graph.Edge{
		edge(1, 2, 4),
		edge(0, 2, 7),
		edge(0, 2, 2),
	}
	result, _ := plan(files, edges, 0.8)

	require.Len(t, result.Removals, 3)
	assert.Equal(t, "a.cpp", result.Removals[0].File)
	assert.Equal(t, 2, result.Removals[0].Line)
	assert.Equal(t, "a.cpp", result.Removals[1].File)
	assert.Equal(t, 7, result.Removals[1].Line)
	assert.Equal(t, "b.cpp", result.Removals[2].File)
}

func TestPlanDeterministic(t *testing.T) {
	build := func() ([]*models.File, []*graph.Edge) {
		files := []*models.File{
			{ID: 0, Rel: "a.cpp", References: []string{"used"}},
			{ID: 1, Rel: "used.h", Provides: []string{"used"}},
			{ID: 2, Rel: "dead1.h"},
			{ID: 3, Rel: "dead2.h"},
		}
		edges := []*graph.Edge{
			edge(0, 1, 1),
			edge(0, 2, 2),
			edge(0, 3, 3),
		}
		return files, edges
	}

	files, edges := build()
	first, _ := plan(files, edges, 0.8)
	for i := 0; i < 5; i++ {
		files, edges = build()
		again, _ := plan(files, edges, 0.8)
		assert.Equal(t, first, again)
	}
}

// Applying the whole plan must never drop a resolution that existed
// before planning started.
func TestPlanPreservesResolutions(t *testing.T) {
	files := []*models.File{
		{ID: 0, Rel: "main.cpp", References: []string{"api", "detail"}},
		{ID: 1, Rel: "api.h", Provides: []string{"api"}, References: []string{"detail"}},
		{ID: 2, Rel: "detail.h", Provides: []string{"detail"}},
		{ID: 3, Rel: "legacy.h"},
	}
	edges := []*graph.Edge{
		edge(0, 1, 1), // main -> api
		edge(0, 3, 2), // main -> legacy (dead)
		edge(1, 2, 1), // api -> detail
	}
	result, g := plan(files, edges, 0.8)

	require.Len(t, result.Removals, 1)
	assert.Equal(t, 2, result.Removals[0].Line)

	// main.cpp must still reach both providers it used before.
	reach := g.Reachable(0)
	assert.True(t, reach.Contains(1))
	assert.True(t, reach.Contains(2))
}
