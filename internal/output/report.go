package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/incdep/incdep/pkg/models"
)

// AnalysisReport builds the renderable report for a full analysis.
func AnalysisReport(a *models.Analysis) *Report {
	report := &Report{
		Title: "Include Analysis",
		Data:  a,
	}

	report.Sections = append(report.Sections, summaryTable(a.Summary))

	if rows := verdictRows(a); len(rows) > 0 {
		report.Sections = append(report.Sections, &Table{
			Title:   "Findings",
			Headers: []string{"File", "Line", "Directive", "Verdict", "Confidence", "Rationale"},
			Rows:    rows,
		})
	}

	if len(a.Warnings) > 0 {
		report.Sections = append(report.Sections, warningsSection(a.Warnings))
	}

	return report
}

// PlanReport builds the renderable report for a removal plan.
func PlanReport(a *models.Analysis) *Report {
	report := &Report{
		Title: "Removal Plan",
		Data:  a.Plan,
	}

	if len(a.Plan.Removals) > 0 {
		report.Sections = append(report.Sections, &Table{
			Title:   "Removals",
			Headers: []string{"File", "Line", "Directive", "Confidence"},
			Rows:    removalRows(a.Plan.Removals),
			Footer:  []string{"Total", "", "", fmt.Sprintf("%d", len(a.Plan.Removals))},
		})
	} else {
		report.Sections = append(report.Sections, &Section{
			Content: "No removable includes found.",
		})
	}

	if len(a.Plan.Reported) > 0 {
		report.Sections = append(report.Sections, &Table{
			Title:   "Below Threshold",
			Headers: []string{"File", "Line", "Directive", "Confidence"},
			Rows:    removalRows(a.Plan.Reported),
		})
	}

	if a.Plan.Reverted > 0 {
		report.Sections = append(report.Sections, &Section{
			Content: fmt.Sprintf("%d candidate(s) reverted during validation.", a.Plan.Reverted),
		})
	}

	return report
}

func summaryTable(s models.Summary) *Table {
	return &Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Files", fmt.Sprintf("%d", s.Files)},
			{"Includes", fmt.Sprintf("%d", s.Edges)},
			{"Resolved", fmt.Sprintf("%d", s.Resolved)},
			{"Not found", fmt.Sprintf("%d", s.NotFound)},
			{"Ambiguous", fmt.Sprintf("%d", s.Ambiguous)},
			{"Necessary", fmt.Sprintf("%d", s.Necessary)},
			{"Redundant", fmt.Sprintf("%d", s.Redundant)},
			{"Removable", fmt.Sprintf("%d", s.Removable)},
			{"Cycles", fmt.Sprintf("%d", s.Cycles)},
			{"Scan errors", fmt.Sprintf("%d", s.ScanErrors)},
		},
		Data: s,
	}
}

// verdictRows lists the edges worth reading about: everything except
// plain necessary includes.
func verdictRows(a *models.Analysis) [][]string {
	var rows [][]string
	for _, e := range a.Graph.Edges {
		if e.Verdict == models.VerdictNecessary || e.Verdict == models.VerdictUnknown {
			continue
		}
		rows = append(rows, []string{
			a.Graph.Files[e.From].Rel,
			fmt.Sprintf("%d", e.Line),
			e.Raw,
			string(e.Verdict),
			fmt.Sprintf("%.2f", e.Confidence),
			e.Rationale,
		})
	}
	return rows
}

func removalRows(rs []models.Removal) [][]string {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{r.File, fmt.Sprintf("%d", r.Line), r.Directive, fmt.Sprintf("%.2f", r.Confidence)}
	}
	return rows
}

func warningsSection(ws []models.Warning) *Section {
	var b strings.Builder
	for _, w := range ws {
		if w.Line > 0 {
			fmt.Fprintf(&b, "[%s] %s:%d %s\n", w.Kind, w.File, w.Line, w.Message)
		} else if w.File != "" {
			fmt.Fprintf(&b, "[%s] %s %s\n", w.Kind, w.File, w.Message)
		} else {
			fmt.Fprintf(&b, "[%s] %s\n", w.Kind, w.Message)
		}
	}
	return &Section{
		Title:   "Warnings",
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    ws,
	}
}

// VerdictColor colors a verdict string for terminal output.
func VerdictColor(v models.Verdict, text string) string {
	switch v {
	case models.VerdictRedundant, models.VerdictRemoved:
		return color.YellowString(text)
	case models.VerdictNecessary:
		return color.GreenString(text)
	case models.VerdictUnresolved:
		return color.RedString(text)
	default:
		return text
	}
}
