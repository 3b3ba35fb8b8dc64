package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/storage"
)

// openStore opens the configured database and runs migrations.
func (a *app) openStore(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}

	if err := store.Migrate(ctx); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, closeStore, nil
}

// openLedger opens the database and loads the ledger. The returned close
// function releases the database.
func (a *app) openLedger(ctx context.Context) (*ledger.Service, func(), error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.Default()
	svc, err := ledger.New(ctx, ledger.Config{
		Store:     storage.NewLedgerGateway(store, logger),
		Converter: currency.NewConverter(a.cfg.Currency.NewProvider(), logger),
		Logger:    logger,
	})
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return svc, closeStore, nil
}

// selectCurrency switches svc to code behind a spinner. An invalid code is an
// error; a failed rate lookup is reported as a warning and the previous
// currency stays in effect.
func selectCurrency(ctx context.Context, w io.Writer, svc *ledger.Service, code string) (model.Snapshot, error) {
	normalized, err := currency.NormalizeCode(code)
	if err != nil {
		return svc.Snapshot(), err
	}
	if normalized == model.BaseCurrency {
		return svc.SelectCurrency(ctx, normalized)
	}

	var snap model.Snapshot
	err = cli.WithSpinner(w, "Fetching "+normalized+" rate", func() error {
		var selectErr error
		snap, selectErr = svc.SelectCurrency(ctx, normalized)
		return selectErr
	})
	if err != nil {
		slog.Warn("Currency not changed", "currency", normalized, "error", err)
		fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%s; showing %s instead", common.UserMessage(err), snap.Currency)))
	}
	return snap, nil
}

func parseAmount(raw, what string) (float64, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, common.InvalidInput("%s %q is out of range", what, raw)
		}
		return 0, common.InvalidInput("%s %q is not a number", what, raw)
	}
	return value, nil
}

// negativeAmountFlagError reports a negative number that the flag parser took
// for an unknown shorthand flag (e.g. "-5") as the invalid amount it is.
func negativeAmountFlagError(what string) func(*cobra.Command, error) error {
	return func(_ *cobra.Command, err error) error {
		msg := err.Error()
		if i := strings.LastIndex(msg, " in -"); i >= 0 && strings.HasPrefix(msg, "unknown shorthand flag") {
			if _, numErr := strconv.ParseFloat(msg[i+len(" in "):], 64); numErr == nil {
				return common.InvalidInput("%s must be greater than zero", what)
			}
		}
		return err
	}
}

// printAlert writes the low balance warning when snap is in breach.
func printAlert(w io.Writer, snap model.Snapshot) {
	if snap.Alert {
		fmt.Fprintln(w, cli.FormatWarning(cli.AlertMessage(snap.Balance, snap.Currency)))
	}
}
