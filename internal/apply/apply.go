// Package apply edits source files to carry out a removal plan.
//
// Edits are grouped per file and written atomically: the new content goes
// to a temp file in the same directory, then renames over the original.
// A file whose current content no longer matches the plan is skipped
// whole, never partially edited.
package apply

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/incdep/incdep/pkg/models"
)

// Result reports what an apply run did.
type Result struct {
	Applied []models.Removal
	// Skipped holds removals whose file changed since analysis, keyed by
	// the reason they were skipped.
	Skipped map[string][]models.Removal
}

// Applier carries out removal plans.
type Applier struct {
	root   string
	logger *log.Logger
	// DryRun logs the edits without touching any file.
	DryRun bool
}

// New creates an applier for the project rooted at root.
func New(root string, logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.Default()
	}
	return &Applier{root: root, logger: logger}
}

// Run applies every removal in the plan. Reported (below-threshold)
// entries are never applied.
func (a *Applier) Run(plan models.RemovalPlan) (*Result, error) {
	result := &Result{Skipped: make(map[string][]models.Removal)}

	byFile := make(map[string][]models.Removal)
	var order []string
	for _, r := range plan.Removals {
		if _, ok := byFile[r.File]; !ok {
			order = append(order, r.File)
		}
		byFile[r.File] = append(byFile[r.File], r)
	}
	sort.Strings(order)

	for _, rel := range order {
		removals := byFile[rel]
		applied, err := a.applyFile(rel, removals)
		if err != nil {
			a.logger.Warn("skipping file", "file", rel, "reason", err)
			result.Skipped[err.Error()] = append(result.Skipped[err.Error()], removals...)
			continue
		}
		result.Applied = append(result.Applied, applied...)
	}
	return result, nil
}

// applyFile deletes the planned lines from one file. Every planned line
// must still hold its directive; otherwise nothing is written.
func (a *Applier) applyFile(rel string, removals []models.Removal) ([]models.Removal, error) {
	path := filepath.Join(a.root, rel)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := splitLines(content)

	drop := make(map[int]bool, len(removals))
	for _, r := range removals {
		if r.Line < 1 || r.Line > len(lines) {
			return nil, fmt.Errorf("line %d out of range", r.Line)
		}
		if got := strings.TrimSpace(lines[r.Line-1]); got != r.Directive {
			return nil, fmt.Errorf("line %d changed since analysis", r.Line)
		}
		drop[r.Line] = true
	}

	if a.DryRun {
		for _, r := range removals {
			a.logger.Info("would remove", "file", rel, "line", r.Line, "directive", r.Directive)
		}
		return removals, nil
	}

	kept := make([]string, 0, len(lines)-len(drop))
	for i, line := range lines {
		if !drop[i+1] {
			kept = append(kept, line)
		}
	}

	if err := writeAtomic(path, []byte(strings.Join(kept, ""))); err != nil {
		return nil, err
	}
	for _, r := range removals {
		a.logger.Debug("removed include", "file", rel, "line", r.Line)
	}
	return removals, nil
}

// splitLines splits content keeping line terminators, so files are
// reassembled byte-identical apart from the deleted lines.
func splitLines(content []byte) []string {
	var lines []string
	start := 0
	for i, c := range content {
		if c == '\n' {
			lines = append(lines, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

// writeAtomic writes data to path via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
