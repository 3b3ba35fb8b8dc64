package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ExpenseListModel shows the expenses with a movable cursor.
type ExpenseListModel struct {
	theme    themes.Theme
	currency string
	expenses []model.ExpenseView
	lastKey  string
	cursor   int
	offset   int
	width    int
	height   int
	focused  bool
}

// NewExpenseList creates an empty list.
func NewExpenseList(theme themes.Theme) ExpenseListModel {
	return ExpenseListModel{
		theme:  theme,
		width:  60,
		height: 10,
	}
}

// SetExpenses replaces the rows, keeping the cursor in range.
func (m *ExpenseListModel) SetExpenses(expenses []model.ExpenseView, currency string) {
	m.expenses = expenses
	m.currency = currency
	m.cursor = min(m.cursor, max(len(expenses)-1, 0))
	m.ensureVisible()
}

// Focus gives the list keyboard focus.
func (m *ExpenseListModel) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *ExpenseListModel) Blur() { m.focused = false }

// Focused reports whether the list has focus.
func (m ExpenseListModel) Focused() bool { return m.focused }

// Cursor returns the selected row index.
func (m ExpenseListModel) Cursor() int { return m.cursor }

// Selected returns the expense under the cursor.
func (m ExpenseListModel) Selected() (model.ExpenseView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.expenses) {
		return model.ExpenseView{}, false
	}
	return m.expenses[m.cursor], true
}

// Resize updates the component size.
func (m *ExpenseListModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.ensureVisible()
}

// Update handles navigation and delete keys while focused.
func (m ExpenseListModel) Update(msg tea.Msg) (ExpenseListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	var cmd tea.Cmd
	switch keyMsg.String() {
	case "j", "down":
		m.cursor = min(m.cursor+1, max(len(m.expenses)-1, 0))
	case "k", "up":
		m.cursor = max(m.cursor-1, 0)
	case "G", "end":
		m.cursor = max(len(m.expenses)-1, 0)
	case "home":
		m.cursor = 0
	case "g":
		if m.lastKey == "g" {
			m.cursor = 0
		}
	case "d", "x", "delete":
		if e, ok := m.Selected(); ok {
			id := e.ID
			cmd = func() tea.Msg { return DeleteExpenseMsg{ID: id} }
		}
	}
	m.lastKey = keyMsg.String()
	m.ensureVisible()

	return m, cmd
}

func (m *ExpenseListModel) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(0, min(m.offset, max(len(m.expenses)-m.height, 0)))
}

// View renders the visible rows.
func (m ExpenseListModel) View() string {
	if len(m.expenses) == 0 {
		return m.theme.StatusPending.Render("No expenses added.")
	}

	amountWidth := 0
	for _, e := range m.expenses {
		amountWidth = max(amountWidth, len(formatAmount(e.Amount)))
	}
	nameWidth := max(m.width-amountWidth-len(m.currency)-4, 8)

	end := min(m.offset+m.height, len(m.expenses))
	lines := make([]string, 0, end-m.offset+1)
	for i := m.offset; i < end; i++ {
		e := m.expenses[i]
		row := fmt.Sprintf("%-*s %*s %s",
			nameWidth, truncate(e.Name, nameWidth),
			amountWidth, formatAmount(e.Amount),
			m.currency)

		switch {
		case i == m.cursor && m.focused:
			row = m.theme.Selected.Render(row)
		case i == m.cursor:
			row = m.theme.Bold.Render(row)
		default:
			row = m.theme.Normal.Render(row)
		}
		lines = append(lines, row)
	}

	if len(m.expenses) > m.height {
		lines = append(lines, m.theme.Subtitle.Render(
			fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.expenses))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return strings.TrimSpace(string(r[:width-1])) + "…"
}
