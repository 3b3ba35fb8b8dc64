package ledger

import (
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	l := model.Ledger{Salary: 5000, Expenses: []model.Expense{
		{ID: 1, Name: "Rent", Amount: 2000},
		{ID: 2, Name: "Food", Amount: 500},
	}}
	totals := Aggregate(l)

	t.Run("base currency", func(t *testing.T) {
		snap := Project(l, totals, currency.BaseQuote())

		assert.Equal(t, "INR", snap.Currency)
		assert.InDelta(t, 1, snap.Rate, 1e-12)
		assert.InDelta(t, 5000, snap.Salary, 1e-9)
		assert.InDelta(t, 2500, snap.TotalExpenses, 1e-9)
		assert.InDelta(t, 2500, snap.Balance, 1e-9)
		assert.False(t, snap.Alert)
		require.Len(t, snap.Expenses, 2)
		assert.Equal(t, model.ExpenseView{ID: 1, Name: "Rent", Amount: 2000}, snap.Expenses[0])
		assert.InDelta(t, 0.5, snap.Chart.ExpenseShare, 1e-9)
		assert.InDelta(t, 0.5, snap.Chart.RemainingShare, 1e-9)
	})

	t.Run("converted values share one rate", func(t *testing.T) {
		snap := Project(l, totals, currency.Quote{Currency: "USD", Rate: 0.012})

		assert.Equal(t, "USD", snap.Currency)
		assert.InDelta(t, 60, snap.Salary, 1e-9)
		assert.InDelta(t, 24, snap.Expenses[0].Amount, 1e-9)
		assert.InDelta(t, 6, snap.Expenses[1].Amount, 1e-9)
		assert.InDelta(t, 30, snap.TotalExpenses, 1e-9)
		assert.InDelta(t, 30, snap.Balance, 1e-9)
	})
}

func TestProject_ChartWithNegativeBalance(t *testing.T) {
	l := model.Ledger{Salary: 10, Expenses: []model.Expense{{ID: 1, Name: "x", Amount: 30}}}
	snap := Project(l, Aggregate(l), currency.BaseQuote())

	assert.InDelta(t, 1, snap.Chart.ExpenseShare, 1e-9)
	assert.InDelta(t, 0, snap.Chart.RemainingShare, 1e-9)
	assert.InDelta(t, -20, snap.Balance, 1e-9)
}

func TestProject_EmptyLedgerHasEmptyChart(t *testing.T) {
	l := model.DefaultLedger()
	snap := Project(l, Aggregate(l), currency.BaseQuote())

	assert.Equal(t, model.Chart{}, snap.Chart)
	assert.NotNil(t, snap.Expenses)
	assert.Empty(t, snap.Expenses)
}

func TestBuildReport_CopiesExpenses(t *testing.T) {
	l := model.Ledger{Salary: 100, Expenses: []model.Expense{{ID: 1, Name: "x", Amount: 30}}}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	report := BuildReport(l, Aggregate(l), now)
	l.Expenses[0].Name = "mutated"

	assert.Equal(t, "x", report.Expenses[0].Name)
	assert.Equal(t, now, report.GeneratedAt)
	assert.Equal(t, model.BaseCurrency, report.Currency)
	assert.InDelta(t, 70, report.Balance, 1e-9)
}
