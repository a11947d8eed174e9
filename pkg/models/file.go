package models

// FileID is a stable, interned identifier for a canonical file.
// IDs are assigned in deterministic (sorted relative path) order and are
// valid for the duration of one run.
type FileID uint32

// File is one canonical source file: its identity, the identifiers it
// provides, and the identifiers it references. Records are created during
// scanning and are read-only afterwards.
type File struct {
	ID     FileID `json:"id" toon:"id"`
	Path   string `json:"path" toon:"path"`         // canonical absolute path
	Rel    string `json:"rel" toon:"rel"`           // path relative to the project root
	Digest string `json:"digest,omitempty" toon:"digest,omitempty"` // blake3 content digest

	// Provides are identifiers this file declares or defines at top level.
	Provides []string `json:"provides,omitempty" toon:"provides,omitempty"`
	// Macros is the subset of Provides that are object-like macro
	// definitions. Macro usage is invisible to lexical reference
	// extraction, so their presence lowers REDUNDANT confidence.
	Macros []string `json:"macros,omitempty" toon:"macros,omitempty"`
	// References are identifiers this file uses that it does not provide.
	References []string `json:"references,omitempty" toon:"references,omitempty"`
}

// HasMacros reports whether the file defines any object-like macros.
func (f *File) HasMacros() bool {
	return len(f.Macros) > 0
}
