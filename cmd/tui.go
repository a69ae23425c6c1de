package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ems/internal/formatter"
	"github.com/desertthunder/ems/internal/shared"
	"github.com/desertthunder/ems/internal/tasks"
	"github.com/desertthunder/ems/internal/ui"
)

// TUI launches the interactive employee browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	config, err := r.Config(cmd)
	if err != nil {
		return err
	}

	svc, err := r.Service(ctx, cmd)
	if err != nil {
		return err
	}

	engine, err := r.Engine(ctx, cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(config.Export.Format)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:    format,
		OutputDir: config.Export.OutputDir,
		Upload:    r.uploader != nil,
	}

	model := ui.NewModel(ctx, svc, engine, opts, fileLogger)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
