package ledger

import (
	"context"
	"io"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// ActionKind names a user action a front end can send.
type ActionKind string

// Supported actions.
const (
	ActionSetSalary      ActionKind = "set_salary"
	ActionAddExpense     ActionKind = "add_expense"
	ActionDeleteExpense  ActionKind = "delete_expense"
	ActionSelectCurrency ActionKind = "select_currency"
	ActionRequestExport  ActionKind = "request_export"
)

// Action is a front-end request. Only the fields relevant to Kind are read.
type Action struct {
	Renderer service.ReportRenderer `json:"-"`
	Output   io.Writer              `json:"-"`
	Kind     ActionKind             `json:"kind"`
	Name     string                 `json:"name,omitempty"`
	Currency string                 `json:"currency,omitempty"`
	Salary   float64                `json:"salary,omitempty"`
	Amount   float64                `json:"amount,omitempty"`
	ID       int64                  `json:"id,omitempty"`
}

// Result is what an action produced. Expense is set by add_expense and
// Report by request_export.
type Result struct {
	Expense  *model.Expense
	Report   *model.Report
	Snapshot model.Snapshot
}

type handlerFunc func(ctx context.Context, a Action) (Result, error)

func (s *Service) dispatchTable() map[ActionKind]handlerFunc {
	return map[ActionKind]handlerFunc{
		ActionSetSalary: func(ctx context.Context, a Action) (Result, error) {
			snap, err := s.SetSalary(ctx, a.Salary)
			return Result{Snapshot: snap}, err
		},
		ActionAddExpense: func(ctx context.Context, a Action) (Result, error) {
			e, snap, err := s.AddExpense(ctx, a.Name, a.Amount)
			if err != nil {
				return Result{Snapshot: snap}, err
			}
			return Result{Snapshot: snap, Expense: &e}, nil
		},
		ActionDeleteExpense: func(ctx context.Context, a Action) (Result, error) {
			snap, err := s.DeleteExpense(ctx, a.ID)
			return Result{Snapshot: snap}, err
		},
		ActionSelectCurrency: func(ctx context.Context, a Action) (Result, error) {
			snap, err := s.SelectCurrency(ctx, a.Currency)
			return Result{Snapshot: snap}, err
		},
		ActionRequestExport: func(ctx context.Context, a Action) (Result, error) {
			if a.Renderer == nil && a.Output == nil {
				report := s.Report()
				return Result{Snapshot: s.Snapshot(), Report: &report}, nil
			}
			report, err := s.Export(ctx, a.Renderer, a.Output)
			return Result{Snapshot: s.Snapshot(), Report: &report}, err
		},
	}
}

// Dispatch routes a to its ledger operation.
func (s *Service) Dispatch(ctx context.Context, a Action) (Result, error) {
	handler, ok := s.handlers[a.Kind]
	if !ok {
		return Result{Snapshot: s.Snapshot()}, common.InvalidInput("unknown action %q", a.Kind)
	}
	return handler(ctx, a)
}
