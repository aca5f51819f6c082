package adapter

import (
	"context"

	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

// Unsupported implements every Adapter method by failing with
// UnsupportedOperation. FieldType is the identity mapping and Close is a
// no-op. Embed it and override the operations a backend supports.
type Unsupported struct {
	AdapterName string
}

var _ Adapter = Unsupported{}

func (u Unsupported) name() string {
	if u.AdapterName == "" {
		return "abstract"
	}
	return u.AdapterName
}

func (u Unsupported) Name() string { return u.name() }

func (u Unsupported) DefaultTypeField() string { return "" }

func (u Unsupported) DefaultPrimaryKeyField() string { return "" }

func (u Unsupported) ProcessIndexBatch(context.Context, Model, []Record, int, BatchOptions) error {
	return errors.Unsupported(u.name(), "process_index_batch")
}

func (u Unsupported) DropIndex(context.Context, Model) error {
	return errors.Unsupported(u.name(), "drop_index")
}

func (u Unsupported) Execute(context.Context, any) (any, error) {
	return nil, errors.Unsupported(u.name(), "execute")
}

func (u Unsupported) IndexSave(context.Context, Model, Record) error {
	return errors.Unsupported(u.name(), "index_save")
}

func (u Unsupported) IndexDestroy(context.Context, Model, Record) error {
	return errors.Unsupported(u.name(), "index_destroy")
}

func (u Unsupported) FindByIndex(context.Context, Model, Query) (*Result, error) {
	return nil, errors.Unsupported(u.name(), "find_by_index")
}

func (u Unsupported) FindIDsByIndex(context.Context, Model, Query) ([]string, error) {
	return nil, errors.Unsupported(u.name(), "find_ids_by_index")
}

func (u Unsupported) FindValuesByIndex(context.Context, Model, Query) ([]Hit, error) {
	return nil, errors.Unsupported(u.name(), "find_values_by_index")
}

func (u Unsupported) OptimizeIndex(context.Context) error {
	return errors.Unsupported(u.name(), "optimize_index")
}

func (u Unsupported) FieldType(t schema.FieldType) string { return string(t) }

func (u Unsupported) Close() error { return nil }
