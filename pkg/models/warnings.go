package models

// WarningKind categorizes non-fatal problems recorded during a run.
type WarningKind string

const (
	WarnScan       WarningKind = "scan"       // unreadable or binary file, excluded from the graph
	WarnResolution WarningKind = "resolution" // not_found or ambiguous directive
	WarnCycle      WarningKind = "cycle"      // include cycle detected
)

// Warning is a recorded, non-fatal problem. Warnings accumulate and are
// reported alongside the output; they never abort a run.
type Warning struct {
	Kind    WarningKind `json:"kind" toon:"kind"`
	File    string      `json:"file,omitempty" toon:"file,omitempty"`
	Line    int         `json:"line,omitempty" toon:"line,omitempty"`
	Message string      `json:"message" toon:"message"`
	// Cycle lists the member files for cycle warnings, in SCC order.
	Cycle []string `json:"cycle,omitempty" toon:"cycle,omitempty"`
}
