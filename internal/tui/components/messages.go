package components

// DeleteExpenseMsg asks for the expense with ID to be removed.
type DeleteExpenseMsg struct {
	ID int64
}
