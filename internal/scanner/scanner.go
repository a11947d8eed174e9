// Package scanner enumerates the C/C++ source files of a project tree.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/incdep/incdep/pkg/config"
)

// sourceExtensions are the file extensions considered C/C++ source.
var sourceExtensions = map[string]bool{
	".c":   true,
	".h":   true,
	".cpp": true,
	".hpp": true,
	".cc":  true,
	".hh":  true,
	".cxx": true,
	".hxx": true,
}

// IsSourceFile reports whether path has a C/C++ source extension.
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot walks up from start looking for a .git directory.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines configured patterns with .gitignore files,
// both parsed as gitignore syntax.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

func (s *Scanner) isExcluded(rel string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans root for C/C++ source files. The returned
// paths are canonical (symlink-resolved, absolute) and sorted, so file id
// assignment downstream is deterministic regardless of walk order.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	seen := make(map[string]bool)
	files := make([]string, 0, 256)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if path != absRoot && s.isExcluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.isExcluded(rel, false) || !IsSourceFile(path) {
			return nil
		}

		canonical, err := filepath.EvalSymlinks(path)
		if err != nil {
			canonical = path
		}
		if !seen[canonical] {
			seen[canonical] = true
			files = append(files, canonical)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks that path does not escape root via symlinks.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
