package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/ui"
)

const tuiLogPath = "./tmp/likesync-tui.log"

// useFileLogger redirects logs to a file so they do not interfere with TUI rendering.
// The returned func restores the previous logger.
func (r *Runner) useFileLogger() (func(), error) {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())

	prev := r.logger
	r.SetLogger(fileLogger)
	return func() { r.SetLogger(prev) }, nil
}

// runTUI shows the sync monitor. run starts once the user confirms.
//
// A nil report with a nil error means the user declined.
func (r *Runner) runTUI(ctx context.Context, info ui.SyncInfo, run ui.Runner) (*models.SyncReport, error) {
	model := ui.NewModel(ctx, info, run)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return model.Report(), ctx.Err()
		}
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	return model.Report(), model.Err()
}
