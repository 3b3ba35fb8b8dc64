package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/model"
	"github.com/charmbracelet/lipgloss"
)

const chartWidth = 30

// FormatAmount prints an already rounded display amount with its currency.
func FormatAmount(amount float64, currency string) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + " " + currency
}

// AlertMessage is the low balance warning shown whenever the alert triggers.
func AlertMessage(balance float64, currency string) string {
	return fmt.Sprintf("Low balance: only %s left (below 10%% of salary)", FormatAmount(balance, currency))
}

// RenderSnapshot draws the ledger summary box, the expense table and the
// expenses/remaining bar.
func RenderSnapshot(s model.Snapshot) string {
	var b strings.Builder

	rows := [][2]string{
		{"Salary", FormatAmount(s.Salary, s.Currency)},
		{"Total expenses", FormatAmount(s.TotalExpenses, s.Currency)},
		{"Balance", FormatAmount(s.Balance, s.Currency)},
	}
	for _, row := range rows {
		b.WriteString(TableCellStyle.Render(fmt.Sprintf("%-15s", row[0])))
		b.WriteString(BoldStyle.Render(row[1]))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if len(s.Expenses) == 0 {
		b.WriteString(SubtleStyle.Render("No expenses added."))
	} else {
		for i, e := range s.Expenses {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("#%d", e.ID)))
			b.WriteString("  ")
			b.WriteString(TableCellStyle.Render(e.Name))
			b.WriteString(FormatAmount(e.Amount, s.Currency))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(RenderChart(s.Chart))

	out := RenderBox(ChartIcon+" Cash flow ("+s.Currency+")", b.String())
	if s.Alert {
		out = lipgloss.JoinVertical(lipgloss.Left, out, AlertBoxStyle.Render(AlertMessage(s.Balance, s.Currency)))
	}
	return out
}

// RenderChart draws the chart proportions as a single bar.
func RenderChart(c model.Chart) string {
	if c.ExpenseShare == 0 && c.RemainingShare == 0 {
		return SubtleStyle.Render("Nothing to chart yet.")
	}

	total := c.ExpenseShare + c.RemainingShare
	spent := int(math.Round(c.ExpenseShare / total * chartWidth))
	bar := ErrorStyle.Render(strings.Repeat("█", spent)) +
		SuccessStyle.Render(strings.Repeat("█", chartWidth-spent))

	legend := fmt.Sprintf("expenses %.0f%%  remaining %.0f%%",
		c.ExpenseShare/total*100, c.RemainingShare/total*100)
	return bar + "\n" + SubtleStyle.Render(legend)
}
