package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashflow/internal/model"
)

func TestNewLedger_Seeded(t *testing.T) {
	tl := NewLedger(t, WithLedger(model.Ledger{
		Salary:   1000,
		Expenses: []model.Expense{{ID: 1, Name: "Rent", Amount: 400}},
	}))

	snap := tl.Service.Snapshot()
	assert.InDelta(t, 600, snap.Balance, 1e-9)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, "Rent", snap.Expenses[0].Name)
}

func TestNewLedger_Empty(t *testing.T) {
	snap := NewLedger(t, WithRates(map[string]float64{"GBP": 0.0095})).Service.Snapshot()
	assert.Zero(t, snap.Salary)
	assert.Empty(t, snap.Expenses)
	assert.Equal(t, model.BaseCurrency, snap.Currency)
}
