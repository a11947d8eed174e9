package main

import (
	"github.com/incdep/incdep/internal/analysis"
	"github.com/incdep/incdep/internal/apply"
	"github.com/incdep/incdep/internal/output"
	"github.com/urfave/cli/v2"
)

func applyCmd() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Remove redundant includes from the source tree",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum confidence for auto-removal (0.0-1.0)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be removed without editing files",
			},
		},
		Action: runApplyCmd,
	}
}

func runApplyCmd(c *cli.Context) error {
	root := getRoot(c)
	cfg, err := buildConfig(c, root)
	if err != nil {
		return fatal(err)
	}
	if c.IsSet("threshold") {
		cfg.Plan.MinConfidence = c.Float64("threshold")
	}
	logger := newLogger(cfg)

	format := output.ParseFormat(cfg.Output.Format)
	formatter, err := output.NewFormatter(format, c.String("output"), c.String("output") == "")
	if err != nil {
		return fatal(err)
	}
	defer formatter.Close()

	svc := analysis.New(cfg, logger)
	svc.ShowProgress = format == output.FormatText && c.String("output") == ""

	result, err := svc.Analyze(c.Context, root)
	if err != nil {
		return fatal(err)
	}

	if result.Plan.Empty() {
		formatter.Success("No removable includes found.")
		return nil
	}

	applier := apply.New(result.Root, logger)
	applier.DryRun = c.Bool("dry-run")
	applied, err := applier.Run(result.Plan)
	if err != nil {
		return fatal(err)
	}

	if c.Bool("dry-run") {
		formatter.Success("Would remove %d include(s) from %d file(s).", len(applied.Applied), countFiles(applied))
	} else {
		formatter.Success("Removed %d include(s) from %d file(s).", len(applied.Applied), countFiles(applied))
	}
	for reason, skipped := range applied.Skipped {
		formatter.Warning("%d removal(s) skipped: %s", len(skipped), reason)
	}
	return nil
}

func countFiles(r *apply.Result) int {
	seen := make(map[string]bool)
	for _, rm := range r.Applied {
		seen[rm.File] = true
	}
	return len(seen)
}
