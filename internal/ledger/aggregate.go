// Package ledger owns the budget ledger and derives every view of it.
package ledger

import "github.com/Veraticus/cashflow/internal/model"

// Aggregate derives totals from l. The alert compares the balance against a
// tenth of the salary, so with a zero salary any expense triggers it.
func Aggregate(l model.Ledger) model.Totals {
	var total float64
	for _, e := range l.Expenses {
		total += e.Amount
	}
	balance := l.Salary - total
	return model.Totals{
		TotalExpenses:  total,
		Balance:        balance,
		AlertTriggered: balance < l.Salary*model.AlertRatio,
	}
}

// AlertFor builds the alert event for l and its totals.
func AlertFor(l model.Ledger, totals model.Totals) model.AlertEvent {
	return model.AlertEvent{
		Triggered: totals.AlertTriggered,
		Balance:   totals.Balance,
		Threshold: l.Salary * model.AlertRatio,
	}
}
