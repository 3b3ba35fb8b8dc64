// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/Veraticus/cashflow/internal/model"
)

// KeyValueStore is the durable key-value store backing the ledger snapshot.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all pairs atomically; a failure leaves no pair written.
	SetMany(ctx context.Context, pairs map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// LedgerStore defines the contract for our persistence layer.
type LedgerStore interface {
	// LoadLedger returns the last saved ledger or the default ledger when
	// nothing usable is stored. Only I/O failures are returned as errors.
	LoadLedger(ctx context.Context) (model.Ledger, error)
	SaveLedger(ctx context.Context, ledger model.Ledger) error
}

// RateProvider fetches the scalar exchange rate from base to target.
type RateProvider interface {
	Rate(ctx context.Context, base, target string) (float64, error)
}

// ReportRenderer turns a base-currency report into a document.
type ReportRenderer interface {
	Render(w io.Writer, report model.Report) error
	// Extension is the file extension of the produced document, without the dot.
	Extension() string
}

// Observer receives the outputs of every ledger recomputation.
type Observer interface {
	SnapshotUpdated(snapshot model.Snapshot)
	AlertRaised(event model.AlertEvent)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
