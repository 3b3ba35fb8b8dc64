package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// Config holds the collaborators of a Service.
type Config struct {
	Store     service.LedgerStore
	Converter *currency.Converter
	Logger    *slog.Logger
	Clock     func() time.Time
	Observers []service.Observer
}

// Service owns the ledger. All operations are serialized; observers are
// notified while the service lock is held and must not call back into it.
type Service struct {
	store     service.LedgerStore
	converter *currency.Converter
	logger    *slog.Logger
	clock     func() time.Time
	ids       *IDGenerator
	handlers  map[ActionKind]handlerFunc
	observers []service.Observer
	state     model.Ledger
	mu        sync.Mutex
}

// New loads the persisted ledger and emits the initial recomputation.
func New(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: ledger store is required", common.ErrMissingConfig)
	}
	if cfg.Converter == nil {
		cfg.Converter = currency.NewConverter(nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	state, err := cfg.Store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	s := &Service{
		store:     cfg.Store,
		converter: cfg.Converter,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		ids:       NewIDGenerator(cfg.Clock, state.MaxID()),
		observers: append([]service.Observer(nil), cfg.Observers...),
		state:     state,
	}
	s.handlers = s.dispatchTable()

	s.logger.Debug("Loaded ledger",
		"salary", state.Salary,
		"expenses", len(state.Expenses))

	s.Refresh()
	return s, nil
}

// Subscribe registers an observer for future recomputations.
func (s *Service) Subscribe(o service.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Ledger returns a copy of the current ledger.
func (s *Service) Ledger() model.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Totals returns the aggregates of the current ledger.
func (s *Service) Totals() model.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Aggregate(s.state)
}

// Quote returns the display quote in effect.
func (s *Service) Quote() currency.Quote {
	return s.converter.Quote()
}

// PendingCurrency returns the currency whose rate is being fetched, if any.
func (s *Service) PendingCurrency() string {
	return s.converter.Pending()
}

// Snapshot projects the current ledger at the current rate without
// notifying observers.
func (s *Service) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.state, Aggregate(s.state), s.converter.Quote())
}

// Refresh recomputes the projection and notifies observers once.
func (s *Service) Refresh() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked()
}

// SetSalary replaces the salary.
func (s *Service) SetSalary(ctx context.Context, value float64) (model.Snapshot, error) {
	if !isFinite(value) || value <= 0 {
		return s.Snapshot(), common.InvalidInput("salary must be greater than zero")
	}
	return s.mutate(ctx, "set_salary", func(l model.Ledger) model.Ledger {
		l.Salary = value
		return l
	})
}

// AddExpense appends an expense with a fresh id.
func (s *Service) AddExpense(ctx context.Context, name string, amount float64) (model.Expense, model.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Expense{}, s.Snapshot(), common.InvalidInput("expense name cannot be empty")
	}
	if !isFinite(amount) || amount <= 0 {
		return model.Expense{}, s.Snapshot(), common.InvalidInput("expense amount must be greater than zero")
	}

	var added model.Expense
	snap, err := s.mutate(ctx, "add_expense", func(l model.Ledger) model.Ledger {
		added = model.Expense{ID: s.ids.Next(), Name: name, Amount: amount}
		l.Expenses = append(l.Expenses, added)
		return l
	})
	if err != nil {
		return model.Expense{}, snap, err
	}
	return added, snap, nil
}

// DeleteExpense removes the expense with id. Unknown ids are a no-op.
func (s *Service) DeleteExpense(ctx context.Context, id int64) (model.Snapshot, error) {
	return s.mutate(ctx, "delete_expense", func(l model.Ledger) model.Ledger {
		kept := l.Expenses[:0]
		for _, e := range l.Expenses {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		l.Expenses = kept
		return l
	})
}

// mutate applies fn to a copy of the ledger, persists the result and only
// then makes it current.
func (s *Service) mutate(ctx context.Context, op string, fn func(model.Ledger) model.Ledger) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state.Clone())
	if err := next.Validate(); err != nil {
		return Project(s.state, Aggregate(s.state), s.converter.Quote()),
			fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	if err := s.store.SaveLedger(ctx, next); err != nil {
		s.logger.Error("Failed to persist ledger", "op", op, "error", err)
		return Project(s.state, Aggregate(s.state), s.converter.Quote()),
			fmt.Errorf("failed to save ledger: %w", err)
	}
	s.state = next

	s.logger.Debug("Ledger updated",
		"op", op,
		"salary", next.Salary,
		"expenses", len(next.Expenses))

	return s.recomputeLocked(), nil
}

func (s *Service) recomputeLocked() model.Snapshot {
	totals := Aggregate(s.state)
	snap := Project(s.state, totals, s.converter.Quote())
	alert := AlertFor(s.state, totals)

	if alert.Triggered {
		s.logger.Info("Balance below alert threshold",
			"balance", alert.Balance,
			"threshold", alert.Threshold)
	}

	for _, o := range s.observers {
		o.SnapshotUpdated(snap)
		o.AlertRaised(alert)
	}
	return snap
}

// RequestCurrency records a display currency selection. When done is true
// the selection already took effect (base currency) and observers have been
// notified; otherwise ResolveRate and ApplyRate complete it.
func (s *Service) RequestCurrency(code string) (currency.Request, bool, error) {
	req, done, err := s.converter.Request(code)
	if err != nil {
		return req, false, err
	}
	if done {
		s.Refresh()
	}
	return req, done, nil
}

// ResolveRate fetches the rate for req without touching any state.
func (s *Service) ResolveRate(ctx context.Context, req currency.Request) (float64, error) {
	return s.converter.Resolve(ctx, req)
}

// ApplyRate applies a fetched rate if req is still the latest selection.
func (s *Service) ApplyRate(req currency.Request, rate float64) (model.Snapshot, bool) {
	if !s.converter.Apply(req, rate) {
		return s.Snapshot(), false
	}
	return s.Refresh(), true
}

// FailRate records that the fetch for req failed. The previous rate stays.
func (s *Service) FailRate(req currency.Request) bool {
	return s.converter.Fail(req)
}

// SelectCurrency switches the display currency, waiting for the rate.
// If a newer selection overtakes this one, currency.ErrSuperseded is returned.
func (s *Service) SelectCurrency(ctx context.Context, code string) (model.Snapshot, error) {
	req, done, err := s.RequestCurrency(code)
	if err != nil {
		return s.Snapshot(), err
	}
	if done {
		return s.Snapshot(), nil
	}

	rate, err := s.ResolveRate(ctx, req)
	if err != nil {
		if !s.FailRate(req) {
			return s.Snapshot(), fmt.Errorf("%w: %w", currency.ErrSuperseded, err)
		}
		return s.Snapshot(), err
	}

	snap, applied := s.ApplyRate(req, rate)
	if !applied {
		return snap, currency.ErrSuperseded
	}
	return snap, nil
}

// Report returns the export payload in base units.
func (s *Service) Report() model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildReport(s.state, Aggregate(s.state), s.clock())
}

// Export renders the base-unit report to w.
func (s *Service) Export(_ context.Context, renderer service.ReportRenderer, w io.Writer) (model.Report, error) {
	if renderer == nil || w == nil {
		return model.Report{}, fmt.Errorf("%w: renderer and output are required", common.ErrExportFailure)
	}

	report := s.Report()
	if err := renderer.Render(w, report); err != nil {
		s.logger.Error("Report export failed", "format", renderer.Extension(), "error", err)
		if errors.Is(err, common.ErrExportFailure) {
			return report, err
		}
		return report, fmt.Errorf("%w: %w", common.ErrExportFailure, err)
	}

	s.logger.Info("Exported report",
		"format", renderer.Extension(),
		"expenses", len(report.Expenses))
	return report, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
