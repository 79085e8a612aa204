// Package storage persists the stack into a durable local key-value slot.
//
// A Slot is a byte-oriented key-value store; the Adapter layers the stack's
// JSON record format on top of one key and tolerates missing or corrupt data.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/topstack/topstack/internal/config"
)

// ErrNotFound is returned by Slot.Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Slot is a durable key-value store.
type Slot interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}

// FileSlot stores each key as <dir>/<key>.json.
type FileSlot struct {
	dir string
}

// NewFileSlot creates the directory if needed and returns a slot rooted there.
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &FileSlot{dir: dir}, nil
}

// Path returns the file backing key.
func (s *FileSlot) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileSlot) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileSlot) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return config.WriteFileAtomic(s.Path(key), value, 0o644)
}

func (s *FileSlot) Close() error { return nil }

// MemorySlot keeps values in process memory.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
	// FailWrites makes every Set fail with this error when non-nil.
	FailWrites error
	// FailReads makes every Get fail with this error when non-nil.
	FailReads error
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: map[string][]byte{}}
}

func (s *MemorySlot) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemorySlot) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemorySlot) Close() error { return nil }
