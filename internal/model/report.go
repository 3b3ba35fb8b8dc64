package model

import "time"

// Report is the export payload. Every amount stays in base currency units,
// whatever display currency is selected.
type Report struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Currency      string    `json:"currency"`
	Expenses      []Expense `json:"expenses"`
	Salary        float64   `json:"salary"`
	TotalExpenses float64   `json:"total_expenses"`
	Balance       float64   `json:"balance"`
}
