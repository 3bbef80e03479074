package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/binu/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: binu mcp serve

Serve the binu tools (list_monitors, navigate_monitor, swap_windows,
daemon_status) over MCP on stdin/stdout. Every tool call is forwarded to
the running daemon, so start 'binu daemon' first.
`)
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}
	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	}
	fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
	printMCPUsage(os.Stderr)
	return 2
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.Usage = func() { printMCPUsage(fs.Output()) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(nil).Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("mcp server: %v", err)
		return 1
	}
	return 0
}
