package model

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

type book struct {
	ID     int
	Title  string
	Author string
	Year   int
}

func (b book) RecordID() string { return strconv.Itoa(b.ID) }

func books(n int) []book {
	out := make([]book, n)
	for i := range out {
		out[i] = book{ID: i + 1, Title: "Title " + strconv.Itoa(i+1), Author: "Author", Year: 2000 + i}
	}
	return out
}

// call is one adapter invocation seen by recordingAdapter.
type call struct {
	op    string
	batch int
	size  int
	opts  adapter.BatchOptions
	query adapter.Query
	docs  []map[string]any
}

// recordingAdapter records every call and answers finds with ids.
type recordingAdapter struct {
	adapter.Unsupported
	calls     []call
	ids       []string
	facets    map[string][]adapter.FacetTerm
	failBatch int
}

func newRecorder() *recordingAdapter {
	return &recordingAdapter{Unsupported: adapter.Unsupported{AdapterName: "recording"}}
}

func (r *recordingAdapter) DefaultTypeField() string       { return "type" }
func (r *recordingAdapter) DefaultPrimaryKeyField() string { return "id" }

func (r *recordingAdapter) ProcessIndexBatch(_ context.Context, m adapter.Model, items []adapter.Record, batch int, opts adapter.BatchOptions) error {
	c := call{op: "batch", batch: batch, size: len(items), opts: opts}
	for _, it := range items {
		doc, err := m.Document(it)
		if err != nil {
			return err
		}
		c.docs = append(c.docs, doc)
	}
	r.calls = append(r.calls, c)
	if batch == r.failBatch {
		return errors.Backend("process_index_batch", context.DeadlineExceeded)
	}
	return nil
}

func (r *recordingAdapter) DropIndex(context.Context, adapter.Model) error {
	r.calls = append(r.calls, call{op: "drop"})
	return nil
}

func (r *recordingAdapter) OptimizeIndex(context.Context) error {
	r.calls = append(r.calls, call{op: "optimize"})
	return nil
}

func (r *recordingAdapter) IndexSave(context.Context, adapter.Model, adapter.Record) error {
	r.calls = append(r.calls, call{op: "save"})
	return nil
}

func (r *recordingAdapter) IndexDestroy(context.Context, adapter.Model, adapter.Record) error {
	r.calls = append(r.calls, call{op: "destroy"})
	return nil
}

func (r *recordingAdapter) FindIDsByIndex(_ context.Context, _ adapter.Model, q adapter.Query) ([]string, error) {
	r.calls = append(r.calls, call{op: "find_ids", query: q})
	return r.ids, nil
}

func (r *recordingAdapter) FindByIndex(ctx context.Context, m adapter.Model, q adapter.Query) (*adapter.Result, error) {
	r.calls = append(r.calls, call{op: "find", query: q})
	ids := r.ids
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}
	records, err := m.Hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &adapter.Result{Total: len(r.ids), IDs: ids, Records: records, Facets: r.facets}, nil
}

func (r *recordingAdapter) ops() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.op
	}
	return out
}

func (r *recordingAdapter) batches() []call {
	var out []call
	for _, c := range r.calls {
		if c.op == "batch" {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingAdapter) last() call {
	return r.calls[len(r.calls)-1]
}

// scanSource streams its records.
type scanSource struct {
	records []book
	opts    ScanOptions
}

func (s *scanSource) Scan(_ context.Context, opts ScanOptions, fn func(book) error) error {
	s.opts = opts
	for _, r := range s.records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// pageSource serves pages and id lookups.
type pageSource struct {
	records []book
	pages   []Page
}

func (s *pageSource) FindPage(_ context.Context, p Page) ([]book, error) {
	s.pages = append(s.pages, p)
	skip := p.Skip()
	if skip >= len(s.records) {
		return nil, nil
	}
	end := len(s.records)
	if p.Limit > 0 && skip+p.Limit < end {
		end = skip + p.Limit
	}
	return s.records[skip:end], nil
}

func (s *pageSource) FindByIDs(_ context.Context, ids []string) ([]book, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []book
	for _, r := range s.records {
		if want[r.RecordID()] {
			out = append(out, r)
		}
	}
	return out, nil
}

// newBookModel builds a Book model with title (text), author (string) and
// year (integer) fields.
func newBookModel(t *testing.T, src any) (*Model[book], *recordingAdapter) {
	t.Helper()
	rec := newRecorder()
	m, err := New[book]("Book", WithAdapter(rec), WithSource(src))
	require.NoError(t, err)
	_, err = m.Index("title")
	require.NoError(t, err)
	_, err = m.Index("author", schema.WithType(schema.FieldString))
	require.NoError(t, err)
	_, err = m.Index("year", schema.WithType(schema.FieldInteger))
	require.NoError(t, err)
	return m, rec
}
