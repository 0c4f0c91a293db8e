// Package main is the entry point for bangline, an interactive prompt with
// csh-style history expansion.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the command line.
type CLI struct {
	Config      string           `help:"Path to configuration file." type:"path" short:"c" placeholder:"FILE"`
	HistoryFile string           `help:"History file, overriding the configuration." type:"path" placeholder:"FILE"`
	LogLevel    string           `help:"Log level (debug, info, warn, error)." placeholder:"LEVEL"`
	Version     kong.VersionFlag `help:"Show version information." short:"v"`

	Repl     ReplCmd     `cmd:"" default:"withargs" help:"Read lines interactively, expanding history references."`
	Expand   ExpandCmd   `cmd:"" help:"Expand one line against the history file and print it."`
	History  HistoryCmd  `cmd:"" help:"List history entries numbered as !N sees them."`
	Complete CompleteCmd `cmd:"" help:"Print completions for a partial !str or !?str."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and executes the selected command. It returns the exit
// status.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	var cli CLI
	exited := -1
	parser, err := kong.New(&cli,
		kong.Name("bangline"),
		kong.Description("Command history with !-style expansion."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{"version": fmt.Sprintf("bangline %s (%s, %s)", version, commit, date)},
		kong.Writers(out, errOut),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		fmt.Fprintf(errOut, "bangline: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exited >= 0 {
		return exited
	}
	if err != nil {
		fmt.Fprintf(errOut, "bangline: %v\n", err)
		return 2
	}

	app, err := newApp(ctx, &cli, in, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "bangline: %v\n", err)
		return 1
	}
	defer app.log.Sync()

	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(errOut, "bangline: %v\n", err)
		return 1
	}
	return 0
}
