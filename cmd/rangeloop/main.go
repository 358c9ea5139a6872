// Command rangeloop lowers for-loops over integer progressions in serialized HIR
// units, evaluates units, and serves the lowering over HTTP/3.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/orizon-lang/rangeloop/internal/cli"
)

var commands = []cli.CommandInfo{
	{Name: "lower", Description: "Lower for-loops in units", Usage: "rangeloop lower [-dump] [-o out.json] unit.json..."},
	{Name: "run", Description: "Evaluate a function of a unit", Usage: "rangeloop run [-func main] [-lower=false] unit.json"},
	{Name: "watch", Description: "Re-lower units whenever they change", Usage: "rangeloop watch unit.json..."},
	{Name: "serve", Description: "Serve the lowering over HTTP/3", Usage: "rangeloop serve [-listen addr]"},
	{Name: "version", Description: "Show version information", Usage: "rangeloop version [--json]"},
}

func main() {
	if len(os.Args) < 2 {
		cli.PrintUsage(os.Stderr, "rangeloop", "for-loop lowering for progression ranges", commands)
		cli.ExitWithCode(2, "")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1], os.Args[2:], os.Stdout, os.Stderr)
	stop()
	cli.ExitWithCode(code, "")
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, sub string, args []string, stdout, stderr io.Writer) int {
	var err error
	switch sub {
	case "help", "-h", "--help":
		cli.PrintUsage(stdout, "rangeloop", "for-loop lowering for progression ranges", commands)
		return 0
	case "version", "-v", "--version":
		err = versionCmd(args, stdout)
	case "lower":
		err = lowerCmd(ctx, args, stdout, stderr)
	case "run":
		err = runCmd(ctx, args, stdout, stderr)
	case "watch":
		err = watchCmd(ctx, args, stdout, stderr)
	case "serve":
		err = serveCmd(ctx, args, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", sub)
		cli.PrintUsage(stderr, "rangeloop", "for-loop lowering for progression ranges", commands)
		return 2
	}
	if err == nil {
		return 0
	}
	if err == errUsage {
		return 2
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
