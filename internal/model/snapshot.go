package model

// AlertRatio is the share of the salary below which the balance raises an alert.
const AlertRatio = 0.1

// Totals holds the values derived from a ledger, in base currency units.
type Totals struct {
	TotalExpenses  float64
	Balance        float64
	AlertTriggered bool
}

// ExpenseView is an expense as displayed, with its amount converted.
type ExpenseView struct {
	Name   string  `json:"name"`
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
}

// Chart holds the proportions for the expenses/remaining chart.
type Chart struct {
	ExpenseShare   float64 `json:"expense_share"`
	RemainingShare float64 `json:"remaining_share"`
}

// Snapshot is the display-ready projection of the ledger at one rate.
type Snapshot struct {
	Currency      string        `json:"currency"`
	Expenses      []ExpenseView `json:"expenses"`
	Chart         Chart         `json:"chart"`
	Rate          float64       `json:"rate"`
	Salary        float64       `json:"salary"`
	TotalExpenses float64       `json:"total_expenses"`
	Balance       float64       `json:"balance"`
	Alert         bool          `json:"alert"`
}

// AlertEvent is emitted once per recomputation. Amounts are in base units.
type AlertEvent struct {
	Balance   float64 `json:"balance"`
	Threshold float64 `json:"threshold"`
	Triggered bool    `json:"triggered"`
}
