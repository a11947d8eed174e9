package main

import (
	"github.com/incdep/incdep/internal/analysis"
	"github.com/incdep/incdep/internal/output"
	"github.com/urfave/cli/v2"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Export the annotated include graph",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Render as a mermaid flowchart (redundant edges dashed)",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	root := getRoot(c)
	cfg, err := buildConfig(c, root)
	if err != nil {
		return fatal(err)
	}
	logger := newLogger(cfg)

	format := output.ParseFormat(cfg.Output.Format)
	formatter, err := output.NewFormatter(format, c.String("output"), false)
	if err != nil {
		return fatal(err)
	}
	defer formatter.Close()

	svc := analysis.New(cfg, logger)
	result, err := svc.Analyze(c.Context, root)
	if err != nil {
		return fatal(err)
	}

	if c.Bool("mermaid") || format == output.FormatText {
		if err := output.WriteMermaid(formatter.Writer(), result.Graph); err != nil {
			return fatal(err)
		}
		return nil
	}
	if err := formatter.Output(result.Graph); err != nil {
		return fatal(err)
	}
	return nil
}
