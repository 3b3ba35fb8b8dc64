// Package testutil builds ledger fixtures backed by an in-memory database.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/storage"
)

// DefaultRates are the static INR rates used by NewLedger when none are given.
var DefaultRates = map[string]float64{"USD": 0.012, "EUR": 0.011}

// TestLedger is a ledger service over a migrated in-memory database.
type TestLedger struct {
	Service *ledger.Service
	Storage *storage.SQLiteStorage
}

// Option adjusts a TestLedger before the service is built.
type Option func(*options)

type options struct {
	rates  map[string]float64
	ledger *model.Ledger
}

// WithRates replaces DefaultRates.
func WithRates(rates map[string]float64) Option {
	return func(o *options) { o.rates = rates }
}

// WithLedger seeds the database with l before the service loads it.
func WithLedger(l model.Ledger) Option {
	return func(o *options) { o.ledger = &l }
}

// NewLedger creates the database, runs migrations, and starts a ledger
// service on it. Everything is closed when the test ends.
func NewLedger(t *testing.T, opts ...Option) *TestLedger {
	t.Helper()
	ctx := context.Background()

	o := options{rates: DefaultRates}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx), "failed to run migrations")

	gateway := storage.NewLedgerGateway(store, nil)
	if o.ledger != nil {
		require.NoError(t, gateway.SaveLedger(ctx, *o.ledger), "failed to seed ledger")
	}

	svc, err := ledger.New(ctx, ledger.Config{
		Store:     gateway,
		Converter: currency.NewConverter(currency.NewStaticProvider(o.rates), nil),
	})
	require.NoError(t, err)

	return &TestLedger{Service: svc, Storage: store}
}
