// Package resolver maps include directive paths to scanned project files.
//
// Resolution is pure with respect to the index: the same directive from
// the same directory always resolves to the same file, regardless of how
// many edges have been removed elsewhere in the graph.
package resolver

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/incdep/incdep/pkg/models"
)

// Result is the outcome of resolving one directive.
type Result struct {
	Target models.FileID
	State  models.ResolutionState
	// Matches holds every distinct search entry that produced the same
	// canonical target. Len > 1 means the directive was ambiguous.
	Matches []string
}

// Resolver resolves include paths against an immutable index of project
// files and an ordered list of search directories.
type Resolver struct {
	searchDirs []string
	byPath     map[string]models.FileID
	logger     *log.Logger
}

// New builds a resolver over the given files. searchDirs must be absolute
// and are consulted in order; the first match wins.
func New(files []models.File, searchDirs []string, logger *log.Logger) *Resolver {
	byPath := make(map[string]models.FileID, len(files))
	for _, f := range files {
		byPath[f.Path] = f.ID
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		searchDirs: searchDirs,
		byPath:     byPath,
		logger:     logger,
	}
}

// Resolve resolves an include path written in fromDir. Quoted includes try
// fromDir first and then the search directories; angle includes only the
// search directories. A path that canonicalizes to the same file through
// more than one search entry is AMBIGUOUS but still resolves to the first
// match.
func (r *Resolver) Resolve(fromDir, include string, quoted bool) Result {
	var dirs []string
	if quoted {
		dirs = make([]string, 0, len(r.searchDirs)+1)
		dirs = append(dirs, fromDir)
		dirs = append(dirs, r.searchDirs...)
	} else {
		dirs = r.searchDirs
	}

	var (
		target  models.FileID
		found   bool
		matches []string
	)
	for _, dir := range dirs {
		candidate := filepath.Clean(filepath.Join(dir, include))
		canonical, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			canonical = candidate
		}
		id, ok := r.byPath[canonical]
		if !ok {
			continue
		}
		if !found {
			target = id
			found = true
			matches = append(matches, dir)
		} else if id == target && matches[len(matches)-1] != dir {
			matches = append(matches, dir)
		} else if id != target {
			// A later entry shadows a different file of the same name.
			// First match wins; not ambiguous, just precedence.
			break
		}
	}

	if !found {
		return Result{State: models.StateNotFound}
	}
	if len(matches) > 1 {
		r.logger.Warn("ambiguous include", "path", include, "dirs", matches)
		return Result{Target: target, State: models.StateAmbiguous, Matches: matches}
	}
	return Result{Target: target, State: models.StateResolved, Matches: matches}
}
