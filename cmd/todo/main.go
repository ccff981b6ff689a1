package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Aarondoran/TerminalTasks/internal/cli"
	"github.com/Aarondoran/TerminalTasks/internal/config"
	"github.com/Aarondoran/TerminalTasks/internal/logging"
	"github.com/Aarondoran/TerminalTasks/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, "config: "+err.Error())
		return 2
	}

	ui.SetTheme(cfg.Theme)
	ui.SetColorMode(cfg.Color)
	logger := logging.New(os.Stderr, cfg.LoggingOptions())
	logger.Debug("config loaded", "file", cfg.File, "backend", cfg.Backend, "config", cfg.ConfigFile)

	// Hand the remaining args to the CLI runner.
	args := fs.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		return 2
	}

	code := cli.Run(ctx, args, cli.Options{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
