package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// Config holds what the browser shows and where it draws.
type Config struct {
	Display      *classification.Display
	Input        io.Reader
	Output       io.Writer
	Transactions []model.CoffeeTransaction
	// AltScreen draws on the alternate screen buffer.
	AltScreen bool
}

// Run shows the browser until the user quits and returns the decisions made.
// Decisions made before ctx is canceled are still returned.
func Run(ctx context.Context, cfg Config) ([]model.Override, error) {
	if cfg.Display == nil {
		return nil, errors.New("browser needs a display")
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(cfg.Transactions, cfg.Display), opts...).Run()

	var decisions []model.Override
	if m, ok := final.(Model); ok {
		decisions = m.Decisions()
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return decisions, fmt.Errorf("browser failed: %w", err)
	}
	return decisions, nil
}
