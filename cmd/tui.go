package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/stx/internal/report"
	"github.com/desertthunder/stx/internal/shared"
	"github.com/desertthunder/stx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: spotify session not initialized, run 'stx auth spotify'", shared.ErrNotAuthenticated)
	}
	if err := r.requireDest(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/stx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	reports := report.NewSet(r.config.Report.Dir)
	defer reports.Close()

	engine, err := r.newEngine(r.config, reports)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.source, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
