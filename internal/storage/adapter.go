package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/models"
)

// ReadError reports a slot that could not be read, such as a busy database
// or a permission error. Unlike a corrupt value it is returned to the caller,
// since starting empty would overwrite durable data on the next save.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed save. The in-memory stack stays authoritative
// but the change is not durable.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("changes not saved (%s): %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Adapter loads and saves the stack under a single slot key.
type Adapter struct {
	slot   Slot
	key    string
	logger *slog.Logger
}

// NewAdapter returns an adapter reading and writing key in slot.
func NewAdapter(slot Slot, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = models.DefaultStorageKey
	}
	return &Adapter{slot: slot, key: key, logger: config.Discard(logger)}
}

// Key returns the slot key the adapter owns.
func (a *Adapter) Key() string { return a.key }

// Load returns the persisted stack. A missing value is an empty stack. A
// value that is not a JSON array is logged and treated as empty; single
// records that fail to decode, or repeat an id, are logged and skipped.
// Failing to read the slot at all is returned as *ReadError.
func (a *Adapter) Load() ([]models.Task, error) {
	data, err := a.slot.Get(a.key)
	if errors.Is(err, ErrNotFound) {
		return []models.Task{}, nil
	}
	if err != nil {
		a.logger.Error("reading stack failed", "key", a.key, "error", err)
		return nil, &ReadError{Key: a.key, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return []models.Task{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		a.logger.Warn("discarding stored stack", "key", a.key, "error", fmt.Errorf("stored value is not a JSON array: %w", err))
		return []models.Task{}, nil
	}

	tasks := make([]models.Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, rec := range raw {
		var t models.Task
		if err := json.Unmarshal(rec, &t); err != nil {
			a.logger.Warn("skipping unreadable task record", "key", a.key, "index", i, "error", err)
			continue
		}
		if seen[t.ID] {
			a.logger.Warn("skipping duplicate task id", "key", a.key, "index", i, "id", t.ID)
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	a.logger.Debug("stack loaded", "key", a.key, "tasks", len(tasks))
	return tasks, nil
}

// Save writes the full stack. Failures are returned as *WriteError.
func (a *Adapter) Save(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return &WriteError{Key: a.key, Err: err}
	}
	if err := a.slot.Set(a.key, data); err != nil {
		a.logger.Error("saving stack failed", "key", a.key, "error", err)
		return &WriteError{Key: a.key, Err: err}
	}
	a.logger.Debug("stack saved", "key", a.key, "tasks", len(tasks))
	return nil
}

// WatchPath returns the file holding the stack when the slot is file backed,
// otherwise "".
func (a *Adapter) WatchPath() string {
	if fs, ok := a.slot.(*FileSlot); ok {
		return fs.Path(a.key)
	}
	return ""
}

// Close releases the underlying slot.
func (a *Adapter) Close() error {
	return a.slot.Close()
}

// Open builds the slot selected by settings. Memory storage is only kept for
// the lifetime of the process.
func Open(settings models.StorageConfig, logger *slog.Logger) (*Adapter, error) {
	if settings.Backend == models.BackendMemory {
		return NewAdapter(NewMemorySlot(), settings.Key, logger), nil
	}

	dir, err := config.DataDir(settings.Dir)
	if err != nil {
		return nil, err
	}

	var slot Slot
	switch settings.Backend {
	case models.BackendFile, "":
		slot, err = NewFileSlot(dir)
	case models.BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
		slot, err = OpenSQLiteSlot(filepath.Join(dir, config.SQLiteFileName), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewAdapter(slot, settings.Key, logger), nil
}
