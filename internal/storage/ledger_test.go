package storage

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/Veraticus/cashflow/internal/model"
)

func newTestGateway(t *testing.T) (*LedgerGateway, *SQLiteStorage, *bytes.Buffer) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewLedgerGateway(store, logger), store, &logs
}

func TestLedgerGateway_LoadEmptyReturnsDefaults(t *testing.T) {
	gw, _, _ := newTestGateway(t)

	got, err := gw.LoadLedger(context.Background())
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if got.Salary != 0 || len(got.Expenses) != 0 {
		t.Errorf("LoadLedger() = %+v, want defaults", got)
	}
	if got.Expenses == nil {
		t.Error("default ledger should carry an empty, non-nil expense slice")
	}
}

func TestLedgerGateway_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ledger model.Ledger
	}{
		{
			name:   "salary only",
			ledger: model.Ledger{Salary: 5000, Expenses: []model.Expense{}},
		},
		{
			name: "salary and expenses",
			ledger: model.Ledger{
				Salary: 5000,
				Expenses: []model.Expense{
					{ID: 1718000000000, Name: "Rent", Amount: 2000},
					{ID: 1718000000001, Name: "Food", Amount: 500.25},
				},
			},
		},
		{
			name: "zero salary with expense",
			ledger: model.Ledger{
				Expenses: []model.Expense{{ID: 7, Name: "Coffee", Amount: 5}},
			},
		},
		{
			name: "fractional salary and unicode name",
			ledger: model.Ledger{
				Salary:   1234.5678,
				Expenses: []model.Expense{{ID: 42, Name: "Café ☕", Amount: 0.01}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _, _ := newTestGateway(t)
			ctx := context.Background()

			if err := gw.SaveLedger(ctx, tt.ledger); err != nil {
				t.Fatalf("SaveLedger() error = %v", err)
			}
			got, err := gw.LoadLedger(ctx)
			if err != nil {
				t.Fatalf("LoadLedger() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.ledger) {
				t.Errorf("round trip = %+v, want %+v", got, tt.ledger)
			}
		})
	}
}

func TestLedgerGateway_SaveOverwrites(t *testing.T) {
	gw, _, _ := newTestGateway(t)
	ctx := context.Background()

	first := model.Ledger{Salary: 100, Expenses: []model.Expense{{ID: 1, Name: "A", Amount: 10}}}
	second := model.Ledger{Salary: 200, Expenses: []model.Expense{}}

	if err := gw.SaveLedger(ctx, first); err != nil {
		t.Fatalf("SaveLedger(first) error = %v", err)
	}
	if err := gw.SaveLedger(ctx, second); err != nil {
		t.Fatalf("SaveLedger(second) error = %v", err)
	}

	got, err := gw.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("LoadLedger() = %+v, want %+v", got, second)
	}
}

func TestLedgerGateway_SaveRejectsInvalidLedger(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	ctx := context.Background()

	bad := model.Ledger{Salary: -1}
	if err := gw.SaveLedger(ctx, bad); err == nil {
		t.Fatal("SaveLedger() accepted a negative salary")
	}
	if _, ok, _ := store.Get(ctx, KeySalary); ok {
		t.Error("invalid ledger was partially written")
	}
}

func TestLedgerGateway_CorruptSnapshotFallsBack(t *testing.T) {
	tests := []struct {
		raw  map[string]string
		name string
	}{
		{
			name: "unparseable salary",
			raw:  map[string]string{KeySalary: "lots", KeyExpenses: "[]"},
		},
		{
			name: "negative salary",
			raw:  map[string]string{KeySalary: "-10"},
		},
		{
			name: "non-finite salary",
			raw:  map[string]string{KeySalary: "NaN"},
		},
		{
			name: "malformed expenses JSON",
			raw:  map[string]string{KeySalary: "100", KeyExpenses: "{not json"},
		},
		{
			name: "expenses of the wrong shape",
			raw:  map[string]string{KeySalary: "100", KeyExpenses: `{"id":1}`},
		},
		{
			name: "non-positive amount",
			raw:  map[string]string{KeyExpenses: `[{"id":1,"name":"Rent","amount":0}]`},
		},
		{
			name: "blank name",
			raw:  map[string]string{KeyExpenses: `[{"id":1,"name":"  ","amount":3}]`},
		},
		{
			name: "duplicate ids",
			raw:  map[string]string{KeyExpenses: `[{"id":1,"name":"a","amount":3},{"id":1,"name":"b","amount":4}]`},
		},
		{
			name: "expense total overflows",
			raw:  map[string]string{KeyExpenses: `[{"id":1,"name":"a","amount":1e308},{"id":2,"name":"b","amount":1e308}]`},
		},
		{
			name: "unknown schema version",
			raw:  map[string]string{KeySchemaVersion: "2", KeySalary: "100"},
		},
		{
			name: "garbage schema version",
			raw:  map[string]string{KeySchemaVersion: "v1", KeySalary: "100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, store, logs := newTestGateway(t)
			ctx := context.Background()

			if err := store.SetMany(ctx, tt.raw); err != nil {
				t.Fatalf("SetMany() error = %v", err)
			}

			got, err := gw.LoadLedger(ctx)
			if err != nil {
				t.Fatalf("LoadLedger() must not surface corruption, got %v", err)
			}
			if !reflect.DeepEqual(got, model.DefaultLedger()) {
				t.Errorf("LoadLedger() = %+v, want defaults", got)
			}
			if !strings.Contains(logs.String(), "Discarding unreadable ledger snapshot") {
				t.Errorf("expected a warning in logs, got %q", logs.String())
			}
		})
	}
}

func TestLedgerGateway_LegacySnapshotWithoutVersion(t *testing.T) {
	gw, store, _ := newTestGateway(t)
	ctx := context.Background()

	err := store.SetMany(ctx, map[string]string{
		KeySalary:   "5000",
		KeyExpenses: `[{"id":1718000000000,"name":"Rent","amount":2000}]`,
	})
	if err != nil {
		t.Fatalf("SetMany() error = %v", err)
	}

	got, err := gw.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	want := model.Ledger{
		Salary:   5000,
		Expenses: []model.Expense{{ID: 1718000000000, Name: "Rent", Amount: 2000}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadLedger() = %+v, want %+v", got, want)
	}
}
