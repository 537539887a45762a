package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/sokinpui/coder.go/cli"
	"github.com/sokinpui/coder.go/coder"
	"github.com/sokinpui/coder.go/internal/logging"
	"github.com/sokinpui/coder.go/internal/tui"
	"github.com/sokinpui/coder.go/internal/ui"
	"github.com/sokinpui/coder.go/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Modes that print to stdout, and --no-tui, run without the TUI.
	plain := cfg.NoTUI || cfg.DryRun || cfg.OutputDiffFix

	var console io.Writer = os.Stderr
	if !plain {
		console = io.Discard
	}
	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	app, err := coder.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var summary model.Summary
	if plain {
		summary, err = app.Execute(ctx)
		if err == nil && !cfg.OutputDiffFix {
			ui.PrintSummary(summary)
		}
	} else {
		m := tui.New(ctx, app)
		p := tea.NewProgram(m)
		app.SetProgressCallback(tui.ProgressFunc(p))
		if _, runErr := p.Run(); runErr != nil {
			fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
			return 1
		}
		summary, err = m.Result()
	}

	if err != nil {
		if plain {
			ui.Error("Error: %v", err)
		}
		var detailed *coder.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
	}
	return coder.ExitCode(summary, err)
}
