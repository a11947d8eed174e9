package models

// Removal is one accepted deletion: a directive line in a file.
type Removal struct {
	File       string  `json:"file" toon:"file"` // relative to the project root
	Line       int     `json:"line" toon:"line"`
	Directive  string  `json:"directive" toon:"directive"`
	Confidence float64 `json:"confidence" toon:"confidence"`
}

// RemovalPlan is the ordered, self-consistent set of removals: applying all
// of them together never drops a symbol resolution that existed before any
// removal.
type RemovalPlan struct {
	Removals []Removal `json:"removals" toon:"removals"`
	// Reported holds redundant edges that are below the confidence
	// threshold or otherwise not auto-removable; they are surfaced for
	// review but excluded from apply.
	Reported []Removal `json:"reported,omitempty" toon:"reported,omitempty"`
	// Reverted counts redundant edges that conflicted during validation
	// and were reset to necessary.
	Reverted int `json:"reverted" toon:"reverted"`
}

// Empty reports whether the plan contains no accepted removals.
func (p *RemovalPlan) Empty() bool {
	return len(p.Removals) == 0
}

// Analysis is the complete engine output consumed by exporters.
type Analysis struct {
	Root     string      `json:"root" toon:"root"`
	Graph    Graph       `json:"graph" toon:"graph"`
	Plan     RemovalPlan `json:"plan" toon:"plan"`
	Warnings []Warning   `json:"warnings,omitempty" toon:"warnings,omitempty"`
	Summary  Summary     `json:"summary" toon:"summary"`
}
