package tui

import (
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
)

// Observer events forwarded from the ledger service.
type snapshotMsg struct {
	snapshot model.Snapshot
}

type alertMsg struct {
	event model.AlertEvent
}

// actionDoneMsg reports a dispatched ledger action.
type actionDoneMsg struct {
	err    error
	kind   ledger.ActionKind
	result ledger.Result
}

// rateResolvedMsg carries the outcome of a background rate fetch.
type rateResolvedMsg struct {
	err  error
	req  currency.Request
	rate float64
}

type exportDoneMsg struct {
	err  error
	path string
}
