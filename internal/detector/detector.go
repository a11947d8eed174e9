// Package detector classifies include edges as necessary or redundant.
//
// An include A -> B is justified by every identifier A references that B
// itself provides. When a referenced identifier is only reachable
// transitively, every sibling include whose subtree provides it is kept,
// since dropping any of them could change what the reference binds to.
// Includes justifying nothing are redundant.
package detector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/incdep/incdep/internal/graph"
	"github.com/incdep/incdep/internal/symbols"
	"github.com/incdep/incdep/pkg/models"
)

// macroConfidenceCap bounds redundant confidence when the included file
// defines macros. Macro use is invisible to reference tracking, so the
// verdict cannot be fully trusted.
const macroConfidenceCap = 0.6

// Detector annotates the working graph with verdicts.
type Detector struct {
	graph *graph.Graph
	index *symbols.Index
}

// New creates a detector over the given graph and symbol index.
func New(g *graph.Graph, idx *symbols.Index) *Detector {
	return &Detector{graph: g, index: idx}
}

// Run classifies every edge in the graph.
func (d *Detector) Run() {
	for id := range d.graph.Files {
		d.DetectFile(models.FileID(id))
	}
}

// DetectFile re-classifies the outgoing edges of one file against the
// graph's current reachability. Removed edges keep their verdicts.
func (d *Detector) DetectFile(id models.FileID) {
	file := d.graph.Files[id]
	edges := d.graph.Outgoing(id)

	type state struct {
		justified  map[string]bool
		confidence float64
	}
	states := make(map[*graph.Edge]*state, len(edges))
	live := make([]*graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Removed {
			continue
		}
		if e.State == models.StateNotFound {
			e.Verdict = models.VerdictUnresolved
			e.Confidence = 0
			e.Rationale = "include target not found in project or search dirs"
			continue
		}
		if e.To == id {
			// A file's own declarations are visible without any include.
			e.Verdict = models.VerdictRedundant
			e.Confidence = 1.0
			e.Rationale = "file includes itself"
			continue
		}
		states[e] = &state{justified: make(map[string]bool), confidence: 1}
		live = append(live, e)
	}
	if len(live) == 0 {
		return
	}

	reach := d.graph.Reachable(id)

	// Per-edge subtree reachability, computed lazily: most references
	// bind to a direct provider and never need it.
	var via map[*graph.Edge]*roaring.Bitmap
	subtree := func(e *graph.Edge) *roaring.Bitmap {
		if via == nil {
			via = make(map[*graph.Edge]*roaring.Bitmap, len(live))
		}
		r, ok := via[e]
		if !ok {
			r = d.graph.ReachableVia(e)
			via[e] = r
		}
		return r
	}

	for _, ref := range file.References {
		reachable := d.index.ReachableProviders(ref, reach)
		if reachable == 0 {
			continue // unresolvable reference, justifies nothing
		}
		conf := 1.0 / float64(reachable)

		justify := func(e *graph.Edge) {
			st := states[e]
			if !st.justified[ref] {
				st.justified[ref] = true
				if conf < st.confidence {
					st.confidence = conf
				}
			}
		}

		direct := false
		for _, e := range live {
			if d.index.Provides(e.To, ref) {
				justify(e)
				direct = true
			}
		}
		if direct {
			continue
		}
		// Only transitive providers exist. Keep every sibling whose
		// subtree covers the reference.
		for _, e := range live {
			for _, p := range d.index.Providers(ref) {
				if subtree(e).Contains(uint32(p)) {
					justify(e)
					break
				}
			}
		}
	}

	for _, e := range live {
		st := states[e]
		if len(st.justified) > 0 {
			names := make([]string, 0, len(st.justified))
			for name := range st.justified {
				names = append(names, name)
			}
			sort.Strings(names)
			e.Verdict = models.VerdictNecessary
			e.Confidence = st.confidence
			e.Justification = names
			e.Rationale = fmt.Sprintf("provides %s", summarize(names))
			continue
		}
		e.Verdict = models.VerdictRedundant
		e.Justification = nil
		e.Confidence = 1.0
		e.Rationale = "no referenced identifier requires this include"
		if d.subtreeDefinesMacros(e, subtree(e)) {
			e.Confidence = macroConfidenceCap
			e.Rationale = "no referenced identifier requires this include, but it pulls in macro definitions"
		}
	}
}

// subtreeDefinesMacros reports whether the included file or anything it
// pulls in defines macros. Macro use is not tracked as references, so
// such removals are only ever reported with reduced confidence.
func (d *Detector) subtreeDefinesMacros(e *graph.Edge, reach *roaring.Bitmap) bool {
	if d.graph.Files[e.To].HasMacros() {
		return true
	}
	it := reach.Iterator()
	for it.HasNext() {
		if d.graph.Files[it.Next()].HasMacros() {
			return true
		}
	}
	return false
}

func summarize(names []string) string {
	const max = 5
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:max], ", "), len(names)-max)
}
