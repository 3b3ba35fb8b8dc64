package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/cashflow/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive view and blocks until the user quits or ctx
// is canceled. Every change is persisted by the service as it happens, so
// leaving the view needs no extra save.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Service == nil {
		return fmt.Errorf("%w: ledger service is required", common.ErrMissingConfig)
	}

	m := newModel(ctx, cfg)
	defer m.bridge.close()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
