package tui

import (
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/Veraticus/cashflow/internal/tui/themes"
)

// ExportFileName is the base name of reports exported from the TUI.
const ExportFileName = "cash-flow-report"

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Service   *ledger.Service
	Renderer  service.ReportRenderer
	ExportDir string
	Currency  string
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		ExportDir: ".",
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithService sets the ledger service the TUI drives.
func WithService(svc *ledger.Service) Option {
	return func(c *Config) {
		c.Service = svc
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithExporter sets the renderer used by the export key and the directory
// the report is written to.
func WithExporter(renderer service.ReportRenderer, dir string) Option {
	return func(c *Config) {
		c.Renderer = renderer
		if dir != "" {
			c.ExportDir = dir
		}
	}
}

// WithCurrency selects a display currency at startup.
func WithCurrency(code string) Option {
	return func(c *Config) {
		c.Currency = code
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
