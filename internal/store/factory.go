// Package store holds the search backends behind the adapter contract:
// Bleve and SQLite FTS5.
package store

import (
	"os"
	"strings"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
)

// Backend names a search backend.
type Backend string

const (
	// BackendSQLite uses SQLite FTS5 (default). WAL mode allows
	// concurrent readers across processes.
	BackendSQLite Backend = "sqlite"

	// BackendBleve uses Bleve v2. The on-disk index is locked by one
	// process at a time.
	BackendBleve Backend = "bleve"
)

const (
	defaultTypeField       = "type"
	defaultPrimaryKeyField = "id"
)

// Open creates the adapter named by cfg.Adapter. An empty adapter name
// detects the backend from an existing index at cfg.Path, falling back to
// SQLite. An empty path opens an in-memory index.
func Open(cfg adapter.Config) (adapter.Adapter, error) {
	name := Backend(strings.ToLower(strings.TrimSpace(cfg.Adapter)))
	if name == "" {
		name = Detect(cfg.Path)
	}

	switch name {
	case BackendSQLite:
		return NewSQLiteAdapter(cfg.Path)
	case BackendBleve:
		return NewBleveAdapter(cfg.Path)
	default:
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "unknown adapter: %s", cfg.Adapter).
			WithDetail("adapter", cfg.Adapter).
			WithSuggestion("valid adapters: sqlite, bleve")
	}
}

// Detect reports which backend owns the index at path: a directory is a
// Bleve index, anything else is SQLite.
func Detect(path string) Backend {
	if path != "" && dirExists(path) {
		return BackendBleve
	}
	return BackendSQLite
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
