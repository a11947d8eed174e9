// Package planner turns redundant verdicts into a safe removal plan.
//
// Each candidate is removed tentatively and validated: if the removal
// changes which providers any still-included file's references resolve
// to, it is reverted. Validation compares xxhash signatures of every
// affected file's resolved-reference set before and after.
package planner

import (
	"runtime"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/incdep/incdep/internal/detector"
	"github.com/incdep/incdep/internal/graph"
	"github.com/incdep/incdep/internal/symbols"
	"github.com/incdep/incdep/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// Planner builds removal plans over an annotated graph.
type Planner struct {
	graph    *graph.Graph
	detector *detector.Detector
	index    *symbols.Index

	// MinConfidence gates auto-removal. Redundant edges below it are
	// reported but left in place.
	MinConfidence float64
	// Jobs bounds planner concurrency; 0 means 2x CPUs.
	Jobs int
}

// New creates a planner.
func New(g *graph.Graph, d *detector.Detector, idx *symbols.Index, minConfidence float64) *Planner {
	return &Planner{graph: g, detector: d, index: idx, MinConfidence: minConfidence}
}

// Run plans removals across the whole graph. Weakly connected components
// share no reachability, so they are planned concurrently.
func (p *Planner) Run() models.RemovalPlan {
	depth := p.graph.Depth()
	components := p.graph.Components()

	jobs := p.Jobs
	if jobs <= 0 {
		jobs = 2 * runtime.NumCPU()
	}

	var (
		mu   sync.Mutex
		plan models.RemovalPlan
	)
	workers := pool.New().WithMaxGoroutines(jobs)
	for _, comp := range components {
		comp := comp
		workers.Go(func() {
			partial := p.planComponent(comp, depth)
			mu.Lock()
			plan.Removals = append(plan.Removals, partial.Removals...)
			plan.Reported = append(plan.Reported, partial.Reported...)
			plan.Reverted += partial.Reverted
			mu.Unlock()
		})
	}
	workers.Wait()

	sortRemovals(plan.Removals)
	sortRemovals(plan.Reported)
	return plan
}

// planComponent plans one weakly connected component.
func (p *Planner) planComponent(comp []models.FileID, depth []int) models.RemovalPlan {
	inComp := make(map[models.FileID]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}

	var candidates []*graph.Edge
	var plan models.RemovalPlan
	for _, e := range p.graph.Edges {
		if !inComp[e.From] || e.Removed || e.Verdict != models.VerdictRedundant {
			continue
		}
		if e.State == models.StateAmbiguous || e.Confidence < p.MinConfidence {
			e.AutoRemovable = false
			plan.Reported = append(plan.Reported, p.removal(e))
			continue
		}
		candidates = append(candidates, e)
	}

	// Deepest targets first so removals cascade bottom-up.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if depth[a.To] != depth[b.To] {
			return depth[a.To] > depth[b.To]
		}
		if a.From != b.From {
			return p.graph.Files[a.From].Rel < p.graph.Files[b.From].Rel
		}
		return a.Line < b.Line
	})

	for _, e := range candidates {
		// Earlier removals in this component may have changed the
		// verdict; trust only a fresh one.
		p.detector.DetectFile(e.From)
		if e.Verdict != models.VerdictRedundant {
			continue
		}
		if e.Confidence < p.MinConfidence {
			e.AutoRemovable = false
			plan.Reported = append(plan.Reported, p.removal(e))
			continue
		}

		affected := p.graph.Ancestors(e.From)
		affected.Add(uint32(e.From))
		before := p.signatures(affected)

		e.Removed = true
		if p.signaturesEqual(affected, before) {
			e.Verdict = models.VerdictRemoved
			e.AutoRemovable = true
			plan.Removals = append(plan.Removals, p.removal(e))
			continue
		}

		e.Removed = false
		e.Verdict = models.VerdictNecessary
		e.AutoRemovable = false
		e.Rationale = "removal changes identifier resolution in an including file"
		plan.Reverted++
	}
	return plan
}

// signatures hashes each affected file's resolved-reference set. The hash
// covers reference names and the ids of their reachable providers, so any
// binding change is visible.
func (p *Planner) signatures(affected *roaring.Bitmap) map[models.FileID]uint64 {
	sigs := make(map[models.FileID]uint64, affected.GetCardinality())
	it := affected.Iterator()
	for it.HasNext() {
		id := models.FileID(it.Next())
		sigs[id] = p.signature(id)
	}
	return sigs
}

func (p *Planner) signaturesEqual(affected *roaring.Bitmap, before map[models.FileID]uint64) bool {
	it := affected.Iterator()
	for it.HasNext() {
		id := models.FileID(it.Next())
		if p.signature(id) != before[id] {
			return false
		}
	}
	return true
}

func (p *Planner) signature(id models.FileID) uint64 {
	reach := p.graph.Reachable(id)
	file := p.graph.Files[id]

	h := xxhash.New()
	var buf [4]byte
	for _, ref := range file.References {
		_, _ = h.WriteString(ref)
		_, _ = h.Write([]byte{0})
		for _, prov := range p.index.Providers(ref) {
			if !reach.Contains(uint32(prov)) && prov != id {
				continue
			}
			buf[0] = byte(prov)
			buf[1] = byte(prov >> 8)
			buf[2] = byte(prov >> 16)
			buf[3] = byte(prov >> 24)
			_, _ = h.Write(buf[:])
		}
		_, _ = h.Write([]byte{0xff})
	}
	return h.Sum64()
}

func (p *Planner) removal(e *graph.Edge) models.Removal {
	return models.Removal{
		File:       p.graph.Files[e.From].Rel,
		Line:       e.Line,
		Directive:  e.Raw,
		Confidence: e.Confidence,
	}
}

func sortRemovals(rs []models.Removal) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].File != rs[j].File {
			return rs[i].File < rs[j].File
		}
		return rs[i].Line < rs[j].Line
	})
}
