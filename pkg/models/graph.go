package models

// ResolutionState is the outcome of resolving an include directive to a
// canonical file. It is computed once per edge and never changes.
type ResolutionState string

const (
	StateResolved  ResolutionState = "resolved"
	StateNotFound  ResolutionState = "not_found"
	StateAmbiguous ResolutionState = "ambiguous"
)

// String returns the string representation.
func (s ResolutionState) String() string {
	return string(s)
}

// Verdict classifies an include edge.
type Verdict string

const (
	VerdictUnknown    Verdict = "unknown"
	VerdictNecessary  Verdict = "necessary"
	VerdictRedundant  Verdict = "redundant"
	VerdictUnresolved Verdict = "unresolved"
	VerdictRemoved    Verdict = "removed"
)

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// IncludeEdge is one include directive occurrence. Directives are never
// deduplicated: two identical includes on different lines are two edges,
// because each line is independently removable.
type IncludeEdge struct {
	From   FileID `json:"from" toon:"from"`
	To     FileID `json:"to" toon:"to"` // meaningful only when State != not_found
	Line   int    `json:"line" toon:"line"`
	Raw    string `json:"raw" toon:"raw"` // directive text as written, e.g. `#include "util.h"`
	Quoted bool   `json:"quoted" toon:"quoted"`

	State         ResolutionState `json:"state" toon:"state"`
	Verdict       Verdict         `json:"verdict" toon:"verdict"`
	Confidence    float64         `json:"confidence" toon:"confidence"`
	Rationale     string          `json:"rationale,omitempty" toon:"rationale,omitempty"`
	Justification []string        `json:"justification,omitempty" toon:"justification,omitempty"`
	// AutoRemovable is false for redundant edges whose confidence fell
	// below the configured threshold, and for ambiguous resolutions.
	AutoRemovable bool `json:"auto_removable" toon:"auto_removable"`
}

// Graph is the exported, annotated include graph snapshot.
type Graph struct {
	Files []File        `json:"files" toon:"files"`
	Edges []IncludeEdge `json:"edges" toon:"edges"`
}

// Summary aggregates run statistics.
type Summary struct {
	Files      int `json:"files" toon:"files"`
	Edges      int `json:"edges" toon:"edges"`
	Resolved   int `json:"resolved" toon:"resolved"`
	NotFound   int `json:"not_found" toon:"not_found"`
	Ambiguous  int `json:"ambiguous" toon:"ambiguous"`
	Necessary  int `json:"necessary" toon:"necessary"`
	Redundant  int `json:"redundant" toon:"redundant"`
	Removable  int `json:"removable" toon:"removable"`
	Cycles     int `json:"cycles" toon:"cycles"`
	ScanErrors int `json:"scan_errors" toon:"scan_errors"`
}
