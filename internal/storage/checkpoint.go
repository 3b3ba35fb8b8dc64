package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id")
	ErrCheckpointInMemory  = errors.New("in-memory databases cannot be checkpointed")
)

// maxAutoCheckpoints is how many automatic checkpoints are kept.
const maxAutoCheckpoints = 5

var checkpointIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// CheckpointInfo describes a saved copy of the ledger database.
type CheckpointInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Salary        string    `json:"salary"`
	FileSize      int64     `json:"file_size"`
	Expenses      int       `json:"expenses"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// CheckpointManager copies the database into a checkpoints directory next to
// it and restores those copies.
type CheckpointManager struct {
	db             *sql.DB
	now            func() time.Time
	dbPath         string
	checkpointsDir string
}

// NewCheckpointManager creates a manager for s. The checkpoints live in a
// "checkpoints" directory beside the database file.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, ErrCheckpointInMemory
	}

	dbPath, err := filepath.Abs(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	checkpointsDir := filepath.Join(filepath.Dir(dbPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             s.db,
		dbPath:         dbPath,
		checkpointsDir: checkpointsDir,
		now:            time.Now,
	}, nil
}

// Dir returns the directory checkpoints are written to.
func (cm *CheckpointManager) Dir() string {
	return cm.checkpointsDir
}

func validateCheckpointID(id string) error {
	if !checkpointIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func (cm *CheckpointManager) paths(id string) (dbFile, metaFile string) {
	return filepath.Join(cm.checkpointsDir, id+".db"), filepath.Join(cm.checkpointsDir, id+".meta.json")
}

// Create saves a copy of the database under tag. An empty tag is generated
// from the current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = "checkpoint-" + cm.now().Format("2006-01-02-150405")
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath, metadataPath := cm.paths(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	salary, expenses, err := cm.summarize(ctx)
	if err != nil {
		return nil, err
	}

	if err := cm.backupDatabase(ctx, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	info := CheckpointInfo{
		ID:            tag,
		CreatedAt:     cm.now(),
		Description:   description,
		Salary:        salary,
		FileSize:      stat.Size(),
		Expenses:      expenses,
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}
	if err := saveMetadata(metadataPath, info); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Debug("Created checkpoint", "id", tag, "expenses", expenses, "auto", auto)
	return &info, nil
}

// summarize reads the raw salary and the number of saved expenses.
func (cm *CheckpointManager) summarize(ctx context.Context) (string, int, error) {
	values := make(map[string]string, 2)
	rows, err := cm.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE key IN (?, ?)`, KeySalary, KeyExpenses)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read ledger summary: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", 0, fmt.Errorf("failed to scan ledger summary: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return "", 0, fmt.Errorf("failed to read ledger summary: %w", err)
	}

	salary := values[KeySalary]
	if salary == "" {
		salary = "0"
	}

	// A corrupt expenses value is still worth a checkpoint; count it as empty.
	var expenses []json.RawMessage
	if raw := values[KeyExpenses]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &expenses); err != nil {
			slog.Warn("Checkpointing unreadable expenses", "error", err)
		}
	}
	return salary, len(expenses), nil
}

// List returns every checkpoint, newest first. Unreadable metadata files are
// skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, *info)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// Get returns the metadata of one checkpoint.
func (cm *CheckpointManager) Get(_ context.Context, id string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(id); err != nil {
		return nil, err
	}
	_, metadataPath := cm.paths(id)
	info, err := loadMetadata(metadataPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the database with checkpoint id. It closes the storage the
// manager was created from; the caller must open the database again.
func (cm *CheckpointManager) Restore(ctx context.Context, id string) error {
	if _, err := cm.Get(ctx, id); err != nil {
		return err
	}
	checkpointPath, _ := cm.paths(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	// A leftover WAL would be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(checkpointPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			slog.Error("failed to put back database after checkpoint restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Warn("failed to remove restore backup", "error", err)
	}
	slog.Info("Restored checkpoint", "id", id)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(_ context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}

	checkpointPath, metadataPath := cm.paths(id)
	if err := os.Remove(checkpointPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(metadataPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("failed to remove metadata file", "error", err, "path", metadataPath)
	}
	return nil
}

// AutoCheckpoint saves an automatic checkpoint before operation and prunes
// all but the newest automatic checkpoints.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, operation string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, cm.now().Format("2006-01-02-150405"))
	info, err := cm.create(ctx, tag, "Automatic checkpoint before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.pruneAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}
	return info, nil
}

func (cm *CheckpointManager) pruneAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept <= maxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint", "error", err, "checkpoint", cp.ID)
		}
	}
	return nil
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// VACUUM INTO takes no bind parameters; the path is built from a
	// validated id inside our own directory.
	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path %q", destPath)
	}
	// #nosec G201 - destPath is validated above
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, copying the file instead", "error", err)
		return copyFile(cm.dbPath, destPath)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths come from the manager, not the user
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	// #nosec G304 - see above
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}

func saveMetadata(path string, info CheckpointInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*CheckpointInfo, error) {
	// #nosec G304 - path is inside the checkpoints directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close checkpoint database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
