package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/incdep/incdep/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Run as an MCP server over stdio",
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(version)
	if err := server.Run(ctx); err != nil {
		return fatal(err)
	}
	return nil
}
