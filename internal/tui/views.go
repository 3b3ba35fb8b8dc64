package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var fieldLabels = [FieldList]string{
	FieldSalary:   "Salary",
	FieldName:     "Expense",
	FieldAmount:   "Amount",
	FieldCurrency: "Currency",
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.theme.Title.Render("Cash Flow") + "  " +
		m.theme.Subtitle.Render(m.currencyLine())

	var body string
	if m.width < 80 {
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderForm(), m.renderSummary(), m.renderList())
	} else {
		left := lipgloss.JoinVertical(lipgloss.Left, m.renderForm(), m.renderList())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.renderSummary())
	}

	sections := []string{header}
	if m.alert.Triggered {
		sections = append(sections, m.renderAlert())
	}
	sections = append(sections, body, m.renderStatus(), m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) currencyLine() string {
	line := fmt.Sprintf("amounts in %s", m.snapshot.Currency)
	if m.snapshot.Currency != "" && m.snapshot.Rate != 1 {
		line += fmt.Sprintf(" (1 INR = %g %s)", m.snapshot.Rate, m.snapshot.Currency)
	}
	if m.pending != "" {
		line += "  " + m.spinner.View() + " fetching " + m.pending
	}
	return line
}

func (m Model) renderForm() string {
	rows := make([]string, 0, len(m.inputs))
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-9s", fieldLabels[i])
		if Field(i) == m.focus {
			label = m.theme.Title.Render(label)
		} else {
			label = m.theme.Subtitle.Render(label)
		}
		rows = append(rows, label+" "+in.View())
	}

	style := m.theme.RoundedBox
	if m.focus != FieldList {
		style = m.theme.FocusedBox
	}
	return style.Render(strings.Join(rows, "\n"))
}

func (m Model) renderList() string {
	style := m.theme.RoundedBox
	if m.focus == FieldList {
		style = m.theme.FocusedBox
	}
	title := m.theme.Bold.Render(fmt.Sprintf("Expenses (%d)", len(m.snapshot.Expenses)))
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.list.View()))
}

func (m Model) renderSummary() string {
	return m.theme.RoundedBox.Render(m.summary.View())
}

func (m Model) renderAlert() string {
	msg := fmt.Sprintf("Balance is below 10%% of your salary: %.2f %s left",
		m.snapshot.Balance, m.snapshot.Currency)
	if m.alertCount > 1 {
		msg += fmt.Sprintf(" (warned %d times)", m.alertCount)
	}
	return m.theme.AlertBanner.Render("⚠ " + msg)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusSuccess:
		return m.theme.StatusSuccess.Render(m.status)
	case statusError:
		return m.theme.StatusError.Render(m.status)
	default:
		return m.theme.StatusPending.Render(m.status)
	}
}
