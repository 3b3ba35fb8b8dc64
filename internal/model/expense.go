package model

import (
	"errors"
	"math"
	"strings"
)

// BaseCurrency is the unit every stored amount is expressed in.
const BaseCurrency = "INR"

// Validation errors for ledger values.
var (
	ErrInvalidSalary = errors.New("salary must be a positive number")
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrEmptyName     = errors.New("expense name cannot be empty")
	ErrDuplicateID   = errors.New("duplicate expense id")
	ErrTotalTooLarge = errors.New("expense total is too large to represent")
)

// Expense is a single named outgoing amount in base currency units.
type Expense struct {
	Name   string  `json:"name"`
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
}

// Validate checks the expense invariants.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !isFinite(e.Amount) || e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Ledger is the authoritative salary and expense record.
type Ledger struct {
	Expenses []Expense
	Salary   float64
}

// DefaultLedger returns the empty ledger used when nothing is stored.
func DefaultLedger() Ledger {
	return Ledger{Expenses: []Expense{}}
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (l Ledger) Clone() Ledger {
	expenses := make([]Expense, len(l.Expenses))
	copy(expenses, l.Expenses)
	return Ledger{Salary: l.Salary, Expenses: expenses}
}

// Find returns the expense with the given id.
func (l Ledger) Find(id int64) (Expense, bool) {
	for _, e := range l.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// MaxID returns the largest expense id, or 0 for an empty ledger.
func (l Ledger) MaxID() int64 {
	var maxID int64
	for _, e := range l.Expenses {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID
}

// Validate checks the ledger invariants: salary >= 0, every expense valid,
// every id unique, and a finite expense total and balance.
func (l Ledger) Validate() error {
	if !isFinite(l.Salary) || l.Salary < 0 {
		return ErrInvalidSalary
	}
	seen := make(map[int64]struct{}, len(l.Expenses))
	var total float64
	for _, e := range l.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, ok := seen[e.ID]; ok {
			return ErrDuplicateID
		}
		seen[e.ID] = struct{}{}
		total += e.Amount
	}
	if !isFinite(total) || !isFinite(l.Salary-total) {
		return ErrTotalTooLarge
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
