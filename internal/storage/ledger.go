package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
)

// Keys of the persisted ledger snapshot.
const (
	KeySchemaVersion = "schema_version"
	KeySalary        = "salary"
	KeyExpenses      = "expenses"
)

// SnapshotSchemaVersion is the only snapshot layout LoadLedger accepts.
const SnapshotSchemaVersion = 1

type expenseRecord struct {
	Name   string  `json:"name"`
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
}

// LedgerGateway persists a ledger as a versioned snapshot in a key-value store.
type LedgerGateway struct {
	kv     service.KeyValueStore
	logger *slog.Logger
}

var _ service.LedgerStore = (*LedgerGateway)(nil)

// NewLedgerGateway creates a gateway over kv. A nil logger uses slog.Default.
func NewLedgerGateway(kv service.KeyValueStore, logger *slog.Logger) *LedgerGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerGateway{kv: kv, logger: logger}
}

// SaveLedger overwrites the stored snapshot with ledger in one atomic write.
func (g *LedgerGateway) SaveLedger(ctx context.Context, ledger model.Ledger) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ledger.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid ledger: %w", err)
	}

	records := make([]expenseRecord, 0, len(ledger.Expenses))
	for _, e := range ledger.Expenses {
		records = append(records, expenseRecord(e))
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode expenses: %w", err)
	}

	return g.kv.SetMany(ctx, map[string]string{
		KeySchemaVersion: strconv.Itoa(SnapshotSchemaVersion),
		KeySalary:        strconv.FormatFloat(ledger.Salary, 'f', -1, 64),
		KeyExpenses:      string(payload),
	})
}

// LoadLedger reads the stored snapshot. A missing or corrupt snapshot yields
// the default ledger; corruption is logged, not returned.
func (g *LedgerGateway) LoadLedger(ctx context.Context) (model.Ledger, error) {
	if err := validateContext(ctx); err != nil {
		return model.Ledger{}, err
	}

	raw := make(map[string]string, 3)
	for _, key := range []string{KeySchemaVersion, KeySalary, KeyExpenses} {
		value, ok, err := g.kv.Get(ctx, key)
		if err != nil {
			return model.Ledger{}, err
		}
		if ok {
			raw[key] = value
		}
	}

	if len(raw) == 0 {
		return model.DefaultLedger(), nil
	}

	ledger, err := decodeSnapshot(raw)
	if err != nil {
		g.logger.Warn("Discarding unreadable ledger snapshot, starting from defaults",
			"error", err)
		return model.DefaultLedger(), nil
	}
	return ledger, nil
}

// decodeSnapshot enforces the schema. Any violation rejects the whole snapshot.
func decodeSnapshot(raw map[string]string) (model.Ledger, error) {
	if v, ok := raw[KeySchemaVersion]; ok {
		version, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return model.Ledger{}, fmt.Errorf("%w: schema version %q", common.ErrCorruptSnapshot, v)
		}
		if version != SnapshotSchemaVersion {
			return model.Ledger{}, fmt.Errorf("%w: unsupported schema version %d", common.ErrCorruptSnapshot, version)
		}
	}

	ledger := model.DefaultLedger()

	if v, ok := raw[KeySalary]; ok {
		salary, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return model.Ledger{}, fmt.Errorf("%w: salary %q", common.ErrCorruptSnapshot, v)
		}
		ledger.Salary = salary
	}

	if v, ok := raw[KeyExpenses]; ok {
		var records []expenseRecord
		if err := json.Unmarshal([]byte(v), &records); err != nil {
			return model.Ledger{}, fmt.Errorf("%w: expenses: %v", common.ErrCorruptSnapshot, err)
		}
		for _, r := range records {
			ledger.Expenses = append(ledger.Expenses, model.Expense(r))
		}
	}

	if err := ledger.Validate(); err != nil {
		return model.Ledger{}, fmt.Errorf("%w: %v", common.ErrCorruptSnapshot, err)
	}
	return ledger, nil
}
