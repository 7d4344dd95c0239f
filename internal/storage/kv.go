package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Keys written by the store. Tasks and projects are JSON arrays; the theme
// is the bare string light or dark.
const (
	KeyTasks    = "tasks"
	KeyProjects = "projects"
	KeyTheme    = "theme"
)

// ValidValue reports whether data is a well-formed value for key. It is how
// file-based backends tell a damaged value from a good one.
func ValidValue(key string, data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	if key == KeyTheme {
		return !bytes.ContainsAny(trimmed, "\n\x00")
	}
	return json.Valid(trimmed)
}

// KV is the durable key-value collaborator behind a Store. Both calls are
// synchronous; Get reports ok=false for an absent key.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Backend is a KV that holds resources.
type Backend interface {
	KV
	io.Closer
}

// Backend names accepted by OpenKV.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// ErrInvalidBackend is returned by OpenKV for an unknown backend name.
var ErrInvalidBackend = errors.New("unknown storage backend")

// OpenKV opens the named backend inside dataDir. An empty name selects the
// file backend.
func OpenKV(backend, dataDir string, log zerolog.Logger) (Backend, error) {
	switch backend {
	case "", BackendFile:
		return NewFileKV(dataDir, log)
	case BackendBolt:
		return NewBoltKV(filepath.Join(dataDir, "taskboard.db"))
	case BackendSQLite:
		return NewSQLiteKV(filepath.Join(dataDir, "taskboard.sqlite"))
	default:
		return nil, fmt.Errorf("%w: %q (want file, bolt or sqlite)", ErrInvalidBackend, backend)
	}
}

// MemKV is an in-memory KV. Setting FailWrites makes every Set fail with
// that error, which simulates a full or read-only store.
type MemKV struct {
	mu         sync.Mutex
	values     map[string]string
	writes     int
	FailWrites error
}

// NewMemKV returns an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns the number of successful Set calls.
func (m *MemKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemKV) Close() error { return nil }
