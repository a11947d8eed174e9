package main

import (
	"github.com/incdep/incdep/internal/analysis"
	"github.com/incdep/incdep/internal/output"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"an"},
		Usage:     "Classify every include as necessary or redundant",
		ArgsUsage: "[path]",
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	root := getRoot(c)
	cfg, err := buildConfig(c, root)
	if err != nil {
		return fatal(err)
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

	if err := formatter.Output(output.AnalysisReport(result)); err != nil {
		return fatal(err)
	}
	if !result.Plan.Empty() {
		return cli.Exit("", exitFindings)
	}
	return nil
}
