package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/incdep/incdep/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes: 0 clean, 1 removable includes found, 2 fatal error.
const (
	exitFindings = 1
	exitFatal    = 2
)

// getRoot returns the project root from positional args, defaulting to ".".
func getRoot(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

func main() {
	app := &cli.App{
		Name:    "incdep",
		Usage:   "C/C++ include dependency analyzer",
		Version: version,
		Description: `Incdep builds the include graph of a C/C++ project, classifies every
#include directive as necessary or redundant based on which declarations
each file actually references, and plans safe removals.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"INCDEP_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringSliceFlag{
				Name:    "include-dir",
				Aliases: []string{"I"},
				Usage:   "Additional include search directory (repeatable, in order)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Additional exclude pattern (gitignore syntax)",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Worker goroutines (default 2x CPUs)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			graphCmd(),
			planCmd(),
			applyCmd(),
			mcpCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(exitFatal)
	}
}

// buildConfig merges the config file with command-line overrides.
func buildConfig(c *cli.Context, root string) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault(root)
	}

	cfg.Search.Dirs = append(cfg.Search.Dirs, c.StringSlice("include-dir")...)
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, c.StringSlice("exclude")...)
	if jobs := c.Int("jobs"); jobs > 0 {
		cfg.Jobs = jobs
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	cfg.Output.Verbose = cfg.Output.Verbose || c.Bool("verbose")
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(os.Stderr)
	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func fatal(err error) error {
	return cli.Exit(fmt.Sprintf("Error: %v", err), exitFatal)
}
