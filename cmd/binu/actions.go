package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/binu/internal/ipc"
	"github.com/1broseidon/binu/internal/navigator"
)

func runNavigate(direction string, args []string) int {
	fs := flag.NewFlagSet(direction, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: binu %s\n", direction)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Go to the adjacent monitor, wrapping around at either end.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", direction)
		fs.Usage()
		return 2
	}
	return navigate(os.Stdout, ipc.NewClient(), direction)
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: binu focus <index>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Go to the monitor with the given zero-based index.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	dir, err := navigator.ParseDirection(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if _, ok := dir.MonitorIndex(); !ok {
		fmt.Fprintln(os.Stderr, "focus expects a monitor index; use 'binu next' or 'binu prev'")
		return 2
	}
	return navigate(os.Stdout, ipc.NewClient(), dir.String())
}

func runSwap(args []string) int {
	fs := flag.NewFlagSet("swap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: binu swap [next|prev|all|<index>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Swap the windows of the current monitor with another monitor.")
		fmt.Fprintln(os.Stderr, "Without a target, swaps the two monitors that have windows.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	target := ipc.SwapAllDirection
	if fs.NArg() == 1 {
		target = strings.ToLower(fs.Arg(0))
	}
	if target != ipc.SwapAllDirection {
		if _, err := navigator.ParseDirection(target); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	return swap(os.Stdout, ipc.NewClient(), target)
}

type navigateClient interface {
	Navigate(direction string) (*ipc.NavigateData, error)
}

func navigate(w io.Writer, client navigateClient, direction string) int {
	res, err := client.Navigate(direction)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(w, "monitor %d -> %d", res.Reference, res.Target)
	if res.FocusedWindow != 0 {
		fmt.Fprintf(w, " (focused 0x%x)", res.FocusedWindow)
	}
	fmt.Fprintln(w)
	return 0
}

type swapClient interface {
	Swap(direction string) (*ipc.SwapData, error)
}

func swap(w io.Writer, client swapClient, direction string) int {
	res, err := client.Swap(direction)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if res.NoOp {
		fmt.Fprintf(w, "nothing to swap: %s\n", res.Reason)
		return 0
	}
	fmt.Fprintf(w, "swapped monitor %d <-> %d (%d windows moved", res.Source, res.Target, res.Moved)
	if res.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", res.Failed)
	}
	fmt.Fprintln(w, ")")
	if res.Failed > 0 {
		return 1
	}
	return 0
}
