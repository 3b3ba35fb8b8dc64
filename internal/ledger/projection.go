package ledger

import (
	"time"

	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/model"
)

// Project builds the display snapshot of l at quote. Every monetary value goes
// through the same quote so the snapshot is internally consistent.
func Project(l model.Ledger, totals model.Totals, quote currency.Quote) model.Snapshot {
	views := make([]model.ExpenseView, 0, len(l.Expenses))
	for _, e := range l.Expenses {
		views = append(views, model.ExpenseView{
			ID:     e.ID,
			Name:   e.Name,
			Amount: quote.Format(e.Amount),
		})
	}

	return model.Snapshot{
		Currency:      quote.Currency,
		Rate:          quote.Rate,
		Salary:        quote.Format(l.Salary),
		Expenses:      views,
		TotalExpenses: quote.Format(totals.TotalExpenses),
		Balance:       quote.Format(totals.Balance),
		Alert:         totals.AlertTriggered,
		Chart:         chartFor(totals),
	}
}

// chartFor splits the chart between expenses and what remains. A negative
// balance draws as a chart that is all expenses.
func chartFor(totals model.Totals) model.Chart {
	spent := totals.TotalExpenses
	remaining := totals.Balance
	if remaining < 0 {
		remaining = 0
	}
	whole := spent + remaining
	if whole <= 0 {
		return model.Chart{}
	}
	return model.Chart{
		ExpenseShare:   spent / whole,
		RemainingShare: remaining / whole,
	}
}

// BuildReport assembles the export payload in base units.
func BuildReport(l model.Ledger, totals model.Totals, now time.Time) model.Report {
	expenses := make([]model.Expense, len(l.Expenses))
	copy(expenses, l.Expenses)
	return model.Report{
		GeneratedAt:   now,
		Currency:      model.BaseCurrency,
		Salary:        l.Salary,
		Expenses:      expenses,
		TotalExpenses: totals.TotalExpenses,
		Balance:       totals.Balance,
	}
}
