// Package analysis orchestrates a full run: scan, lex, resolve, build the
// include graph, classify edges and plan removals.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/incdep/incdep/internal/detector"
	"github.com/incdep/incdep/internal/graph"
	"github.com/incdep/incdep/internal/lexer"
	"github.com/incdep/incdep/internal/parser"
	"github.com/incdep/incdep/internal/planner"
	"github.com/incdep/incdep/internal/progress"
	"github.com/incdep/incdep/internal/repo"
	"github.com/incdep/incdep/internal/resolver"
	"github.com/incdep/incdep/internal/scanner"
	"github.com/incdep/incdep/internal/symbols"
	"github.com/incdep/incdep/pkg/config"
	"github.com/incdep/incdep/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// Service runs the analysis pipeline.
type Service struct {
	cfg    *config.Config
	logger *log.Logger
	// ShowProgress enables terminal progress bars during long phases.
	ShowProgress bool
}

// New creates an analysis service.
func New(cfg *config.Config, logger *log.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{cfg: cfg, logger: logger}
}

// scanned is one lexed source file before id assignment.
type scanned struct {
	path       string
	rel        string
	digest     string
	directives []lexer.Directive
	provides   []string
	macros     []string
	references []string
}

func (s *Service) jobs() int {
	if s.cfg.Jobs > 0 {
		return s.cfg.Jobs
	}
	return 2 * runtime.NumCPU()
}

// Analyze runs the full pipeline on the project rooted at root.
func (s *Service) Analyze(ctx context.Context, root string) (*models.Analysis, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", absRoot)
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	paths, err := scanner.New(s.cfg).ScanDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", absRoot, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no C/C++ source files under %s", absRoot)
	}
	s.logger.Debug("scan complete", "files", len(paths))

	var warnings []models.Warning
	summary := models.Summary{}

	files, lexWarnings := s.lexAll(ctx, absRoot, paths)
	warnings = append(warnings, lexWarnings...)
	summary.ScanErrors = len(lexWarnings)

	// Deterministic ids: files sorted by path relative to the root.
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })

	modelFiles := make([]models.File, len(files))
	for i, f := range files {
		modelFiles[i] = models.File{
			ID:         models.FileID(i),
			Path:       f.path,
			Rel:        f.rel,
			Digest:     f.digest,
			Provides:   f.provides,
			Macros:     f.macros,
			References: f.references,
		}
	}

	edges, resWarnings, counts := s.resolveAll(absRoot, files, modelFiles)
	warnings = append(warnings, resWarnings...)
	summary.Resolved = counts.resolved
	summary.NotFound = counts.notFound
	summary.Ambiguous = counts.ambiguous

	filePtrs := make([]*models.File, len(modelFiles))
	for i := range modelFiles {
		filePtrs[i] = &modelFiles[i]
	}
	g := graph.New(filePtrs, edges)

	for _, cycle := range g.Cycles() {
		members := make([]string, len(cycle))
		for i, id := range cycle {
			members[i] = modelFiles[id].Rel
		}
		warnings = append(warnings, models.Warning{
			Kind:    models.WarnCycle,
			File:    members[0],
			Message: fmt.Sprintf("include cycle through %d file(s)", len(members)),
			Cycle:   members,
		})
		summary.Cycles++
	}

	idx := symbols.Build(filePtrs)
	det := detector.New(g, idx)
	det.Run()

	pln := planner.New(g, det, idx, s.cfg.Plan.MinConfidence)
	pln.Jobs = s.cfg.Jobs
	plan := pln.Run()

	exported := g.Export()
	summary.Files = len(exported.Files)
	summary.Edges = len(exported.Edges)
	for _, e := range exported.Edges {
		switch e.Verdict {
		case models.VerdictNecessary:
			summary.Necessary++
		case models.VerdictRedundant, models.VerdictRemoved:
			summary.Redundant++
		}
	}
	summary.Removable = len(plan.Removals)

	return &models.Analysis{
		Root:     absRoot,
		Graph:    exported,
		Plan:     plan,
		Warnings: warnings,
		Summary:  summary,
	}, nil
}

// lexAll reads and lexes every file concurrently. Unreadable or binary
// files become scan warnings and are dropped from the graph.
func (s *Service) lexAll(ctx context.Context, root string, paths []string) ([]scanned, []models.Warning) {
	source := repo.New(repo.FilesystemSource{})
	tracker := progress.NewTracker("lexing", len(paths), s.ShowProgress)

	parsers := sync.Pool{New: func() any { return parser.New() }}

	var (
		mu       sync.Mutex
		files    []scanned
		warnings []models.Warning
	)
	workers := pool.New().WithMaxGoroutines(s.jobs())
	for _, path := range paths {
		path := path
		workers.Go(func() {
			defer tracker.Tick()
			content, err := source.Read(path)
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if err != nil {
				mu.Lock()
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnScan,
					File:    rel,
					Message: err.Error(),
				})
				mu.Unlock()
				return
			}

			res := lexer.Scan(content)
			file := scanned{
				path:       path,
				rel:        rel,
				digest:     source.Digest(path),
				directives: res.Directives,
				provides:   res.Provides,
				macros:     res.Macros,
				references: res.References,
			}

			// A clean syntax-aware parse can surface declarations the
			// lexer's heuristics missed.
			p := parsers.Get().(*parser.Parser)
			if extra, err := p.Declarations(ctx, path, content); err == nil && len(extra) > 0 {
				file.provides = mergeNames(file.provides, extra)
			}
			parsers.Put(p)

			mu.Lock()
			files = append(files, file)
			mu.Unlock()
		})
	}
	workers.Wait()
	tracker.FinishSuccess()
	return files, warnings
}

func mergeNames(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, n := range base {
		seen[n] = true
	}
	for _, n := range extra {
		if !seen[n] {
			seen[n] = true
			base = append(base, n)
		}
	}
	sort.Strings(base)
	return base
}

type resolutionCounts struct {
	resolved  int
	notFound  int
	ambiguous int
}

// resolveAll turns every directive into an edge. Search directories come
// from config, resolved against the project root.
func (s *Service) resolveAll(root string, files []scanned, modelFiles []models.File) ([]*graph.Edge, []models.Warning, resolutionCounts) {
	searchDirs := make([]string, 0, len(s.cfg.Search.Dirs))
	for _, dir := range s.cfg.Search.Dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			dir = resolved
		}
		searchDirs = append(searchDirs, dir)
	}
	res := resolver.New(modelFiles, searchDirs, s.logger)
	spinner := progress.NewSpinner("resolving includes", s.ShowProgress)
	defer spinner.FinishSuccess()

	var (
		edges    []*graph.Edge
		warnings []models.Warning
		counts   resolutionCounts
	)
	for i, f := range files {
		spinner.Tick()
		from := models.FileID(i)
		fromDir := filepath.Dir(f.path)
		for _, d := range f.directives {
			r := res.Resolve(fromDir, d.Path, d.Quoted)
			e := &graph.Edge{
				IncludeEdge: models.IncludeEdge{
					From:   from,
					To:     r.Target,
					Line:   d.Line,
					Raw:    d.Raw,
					Quoted: d.Quoted,
					State:  r.State,
				},
			}
			switch r.State {
			case models.StateResolved:
				counts.resolved++
			case models.StateAmbiguous:
				counts.ambiguous++
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnResolution,
					File:    f.rel,
					Line:    d.Line,
					Message: fmt.Sprintf("%s resolves through %d search entries", d.Raw, len(r.Matches)),
				})
			case models.StateNotFound:
				counts.notFound++
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnResolution,
					File:    f.rel,
					Line:    d.Line,
					Message: fmt.Sprintf("%s not found in project or search dirs", d.Raw),
				})
			}
			edges = append(edges, e)
		}
	}
	return edges, warnings, counts
}
