package main

import (
	"github.com/incdep/incdep/internal/analysis"
	"github.com/incdep/incdep/internal/output"
	"github.com/urfave/cli/v2"
)

func planCmd() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Compute a safe removal plan for redundant includes",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum confidence for auto-removal (0.0-1.0)",
			},
		},
		Action: runPlanCmd,
	}
}

func runPlanCmd(c *cli.Context) error {
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

	if err := formatter.Output(output.PlanReport(result)); err != nil {
		return fatal(err)
	}
	if !result.Plan.Empty() {
		return cli.Exit("", exitFindings)
	}
	return nil
}
