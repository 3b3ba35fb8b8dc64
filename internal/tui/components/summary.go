package components

import (
	"fmt"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// SummaryModel shows the totals and the expenses/remaining chart.
type SummaryModel struct {
	theme    themes.Theme
	chart    progress.Model
	snapshot model.Snapshot
	width    int
}

// NewSummaryModel creates a new summary panel.
func NewSummaryModel(theme themes.Theme) SummaryModel {
	chart := progress.New(
		progress.WithSolidFill(string(theme.Error)),
		progress.WithoutPercentage(),
	)
	chart.EmptyColor = string(theme.Success)
	chart.Width = 40

	return SummaryModel{
		theme: theme,
		chart: chart,
		width: 44,
	}
}

// SetSnapshot replaces the displayed values.
func (m *SummaryModel) SetSnapshot(s model.Snapshot) {
	m.snapshot = s
}

// Resize updates the component size.
func (m *SummaryModel) Resize(width int) {
	m.width = width
	m.chart.Width = max(min(width-4, 60), 10)
}

// View renders the panel.
func (m SummaryModel) View() string {
	s := m.snapshot
	rows := []string{
		m.row("Salary", s.Salary),
		m.row("Expenses", s.TotalExpenses),
		m.row("Balance", s.Balance),
		"",
		m.renderChart(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m SummaryModel) row(label string, amount float64) string {
	value := fmt.Sprintf("%s %s", formatAmount(amount), m.snapshot.Currency)
	style := m.theme.Bold
	if label == "Balance" && amount < 0 {
		style = m.theme.StatusError
	}
	return m.theme.Subtitle.Render(fmt.Sprintf("%-10s", label)) + style.Render(value)
}

func (m SummaryModel) renderChart() string {
	c := m.snapshot.Chart
	if c.ExpenseShare == 0 && c.RemainingShare == 0 {
		return m.theme.StatusPending.Render("Set a salary or add expenses to see the chart.")
	}

	legend := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Foreground(m.theme.Error).Render("■ "),
		m.theme.Normal.Render(fmt.Sprintf("Expenses %.0f%%   ", c.ExpenseShare*100)),
		lipgloss.NewStyle().Foreground(m.theme.Success).Render("■ "),
		m.theme.Normal.Render(fmt.Sprintf("Remaining %.0f%%", c.RemainingShare*100)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.chart.ViewAs(c.ExpenseShare), legend)
}
