package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

type book struct {
	ID     string
	Title  string
	Author string
	Genre  string
}

func (b book) RecordID() string { return b.ID }

// fakeModel is an adapter.Model backed by a map.
type fakeModel struct {
	typ     string
	cfg     *schema.Configuration
	records map[string]adapter.Record
}

func newBookModel(t *testing.T, typ string) *fakeModel {
	t.Helper()
	cfg := schema.NewConfiguration(defaultTypeField, defaultPrimaryKeyField)
	for name, ft := range map[string]schema.FieldType{
		"title":  schema.FieldText,
		"author": schema.FieldString,
		"genre":  schema.FieldString,
	} {
		f, err := schema.NewField(name, schema.WithType(ft))
		require.NoError(t, err)
		cfg.Register(f)
	}
	return &fakeModel{typ: typ, cfg: cfg, records: make(map[string]adapter.Record)}
}

func (m *fakeModel) IndexType() string                     { return m.typ }
func (m *fakeModel) Configuration() *schema.Configuration { return m.cfg }
func (m *fakeModel) IndexID(r adapter.Record) string      { return m.typ + ":" + r.RecordID() }

func (m *fakeModel) Document(r adapter.Record) (map[string]any, error) {
	doc := make(map[string]any)
	for _, f := range m.cfg.Fields() {
		v, err := f.Value(r)
		if err != nil {
			return nil, err
		}
		doc[f.Name()] = v
	}
	for _, name := range m.cfg.Associations() {
		if v, ok := schema.Attribute(r, name); ok {
			doc[name] = v
		}
	}
	return doc, nil
}

func (m *fakeModel) Hydrate(_ context.Context, ids []string) ([]adapter.Record, error) {
	out := make([]adapter.Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *fakeModel) add(records ...book) []adapter.Record {
	out := make([]adapter.Record, len(records))
	for i, r := range records {
		m.records[r.ID] = r
		out[i] = r
	}
	return out
}

func mustField(t *testing.T, name string, opts ...schema.FieldOption) *schema.Field {
	t.Helper()
	f, err := schema.NewField(name, opts...)
	require.NoError(t, err)
	return f
}

// newWeightedModel builds a model with two text fields, title and author,
// boosted by the given weights.
func newWeightedModel(t *testing.T, titleBoost, authorBoost float64) *fakeModel {
	t.Helper()
	cfg := schema.NewConfiguration(defaultTypeField, defaultPrimaryKeyField)
	for name, w := range map[string]float64{"title": titleBoost, "author": authorBoost} {
		f, err := schema.NewField(name, schema.WithBoost(w))
		require.NoError(t, err)
		cfg.Register(f)
	}
	return &fakeModel{typ: "Book", cfg: cfg, records: make(map[string]adapter.Record)}
}

func sampleBooks() []book {
	return []book{
		{ID: "1", Title: "Go Programming", Author: "Alice Smith", Genre: "tech"},
		{ID: "2", Title: "Go in Action", Author: "Bob Jones", Genre: "tech"},
		{ID: "3", Title: "Cooking Basics", Author: "Alice Smith", Genre: "food"},
	}
}

type backendCase struct {
	name string
	open func(t *testing.T) adapter.Adapter
}

func backends() []backendCase {
	return []backendCase{
		{name: "sqlite", open: func(t *testing.T) adapter.Adapter {
			a, err := NewSQLiteAdapter("")
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })
			return a
		}},
		{name: "bleve", open: func(t *testing.T) adapter.Adapter {
			a, err := NewBleveAdapter("")
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })
			return a
		}},
	}
}

// indexed opens a backend and indexes the sample books in one batch.
func indexed(t *testing.T, bc backendCase) (adapter.Adapter, *fakeModel) {
	t.Helper()
	a := bc.open(t)
	m := newBookModel(t, "Book")
	items := m.add(sampleBooks()...)
	require.NoError(t, a.ProcessIndexBatch(t.Context(), m, items, 1, adapter.BatchOptions{Commit: true, Silent: true}))
	return a, m
}
