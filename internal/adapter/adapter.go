// Package adapter defines the contract every search backend implements.
//
// Models talk to backends only through [Adapter]. A backend that covers
// part of the contract embeds [Unsupported] and overrides what it supports;
// the rest fails with UnsupportedOperation, which callers can tell apart
// from IndexBackendError (a runtime failure inside the backend).
package adapter

import (
	"context"

	"github.com/Aman-CERP/bigindex/internal/schema"
)

// Record is a persisted domain object that can be indexed.
type Record interface {
	// RecordID returns the primary key in the primary store.
	RecordID() string
}

// Model is what a backend needs to know about an indexable model.
type Model interface {
	// IndexType is the logical document type, the model name by default.
	IndexType() string

	// Configuration returns the model's fields and indexing policy.
	Configuration() *schema.Configuration

	// IndexID composes "{IndexType}:{RecordID}".
	IndexID(r Record) string

	// Document returns the field values to index for r, keyed by field name.
	// Excluded fields are left out.
	Document(r Record) (map[string]any, error)

	// Hydrate loads records from the primary store by primary key, in the
	// order given. Keys that no longer exist are skipped.
	Hydrate(ctx context.Context, ids []string) ([]Record, error)
}

// Adapter is the search-backend contract.
type Adapter interface {
	// Name identifies the backend ("bleve", "sqlite", ...).
	Name() string

	// DefaultTypeField names the document field holding the index type.
	DefaultTypeField() string

	// DefaultPrimaryKeyField names the document field holding the record key.
	DefaultPrimaryKeyField() string

	// ProcessIndexBatch indexes items. batch is the 1-based sequence number
	// of the batch within a rebuild. Failures are IndexBackendError and are
	// not retried.
	ProcessIndexBatch(ctx context.Context, m Model, items []Record, batch int, opts BatchOptions) error

	// DropIndex removes every document of m's type. Dropping an empty or
	// absent type is not an error.
	DropIndex(ctx context.Context, m Model) error

	// Execute runs a backend-specific request and returns the backend's
	// raw response.
	Execute(ctx context.Context, request any) (any, error)

	// IndexSave upserts one record. Safe to repeat.
	IndexSave(ctx context.Context, m Model, r Record) error

	// IndexDestroy deletes one record's document. Safe to repeat.
	IndexDestroy(ctx context.Context, m Model, r Record) error

	// FindByIndex runs q restricted to m's type and hydrates the matches
	// through m. With q.RawResult the backend response is returned in
	// Result.Raw and hydration is skipped.
	FindByIndex(ctx context.Context, m Model, q Query) (*Result, error)

	// FindIDsByIndex runs q and returns matching record keys in rank order.
	FindIDsByIndex(ctx context.Context, m Model, q Query) ([]string, error)

	// FindValuesByIndex runs q and returns the stored values of q.Fields.
	FindValuesByIndex(ctx context.Context, m Model, q Query) ([]Hit, error)

	// OptimizeIndex compacts the index.
	OptimizeIndex(ctx context.Context) error

	// FieldType maps a logical field type to the backend's type name.
	FieldType(t schema.FieldType) string

	// Close releases the backend.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Adapter is the backend name, e.g. "bleve" or "sqlite".
	Adapter string `yaml:"adapter" json:"adapter"`
	// Path is the on-disk location. Empty means in-memory.
	Path string `yaml:"path" json:"path"`
	// Options holds backend-specific settings.
	Options map[string]any `yaml:"options" json:"options"`
}

// BatchOptions control how a backend treats a rebuild batch.
type BatchOptions struct {
	// Commit makes the batch durable before returning.
	Commit bool
	// Optimize is set when the rebuild will optimize once it finishes.
	Optimize bool
	// BatchSize is the nominal batch size of the rebuild.
	BatchSize int
	// Silent suppresses per-batch progress logging.
	Silent bool
}
