package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	bierrors "github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

func TestSQLiteAdapter_ExecuteReturnsRows(t *testing.T) {
	// Given: an index with the sample books
	a, _ := indexed(t, backends()[0])

	// When: a raw statement is executed
	out, err := a.Execute(t.Context(), SQLRequest{Query: `SELECT id FROM bi_book WHERE id = ?`, Args: []any{"2"}})

	// Then: rows come back as column maps
	require.NoError(t, err)
	rows, ok := out.([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0]["id"])
}

func TestSQLiteAdapter_ExecuteBadSQLIsBackendError(t *testing.T) {
	a, _ := indexed(t, backends()[0])

	_, err := a.Execute(t.Context(), "SELECT * FROM no_such_table")

	assert.True(t, errors.Is(err, bierrors.ErrIndexBackend))
}

func TestSQLiteAdapter_OrderByUnknownField(t *testing.T) {
	a, m := indexed(t, backends()[0])

	_, err := a.FindIDsByIndex(t.Context(), m, adapter.Query{Order: []string{"nope"}})

	assert.True(t, errors.Is(err, bierrors.ErrInvalidFindOption))
}

func TestSQLiteAdapter_OrderDescending(t *testing.T) {
	a, m := indexed(t, backends()[0])

	ids, err := a.FindIDsByIndex(t.Context(), m, adapter.Query{Order: []string{"-id"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, ids)
}

func TestSQLiteAdapter_RejectsNonIdentifierField(t *testing.T) {
	a, err := NewSQLiteAdapter("")
	require.NoError(t, err)
	defer a.Close()

	m := newBookModel(t, "Book")
	f, err := schema.NewField("bad name")
	require.NoError(t, err)
	m.cfg.Register(f)

	err = a.ProcessIndexBatch(t.Context(), m, nil, 1, adapter.BatchOptions{})

	assert.True(t, errors.Is(err, bierrors.ErrInvalidFieldSpec))
}

func TestSQLiteAdapter_ExcludedFieldsAreNotColumns(t *testing.T) {
	a, err := NewSQLiteAdapter("")
	require.NoError(t, err)
	defer a.Close()
	m := newBookModel(t, "Book")
	m.cfg.Exclude("genre")

	require.NoError(t, a.ProcessIndexBatch(t.Context(), m, m.add(sampleBooks()...), 1, adapter.BatchOptions{Silent: true}))

	out, err := a.Execute(t.Context(), "SELECT * FROM bi_book LIMIT 1")
	require.NoError(t, err)
	row := out.([]map[string]any)[0]
	assert.Contains(t, row, "title")
	assert.NotContains(t, row, "genre")
}

func TestSQLiteAdapter_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	// Given: a file-backed index with committed documents
	a, err := NewSQLiteAdapter(path)
	require.NoError(t, err)
	m := newBookModel(t, "Book")
	require.NoError(t, a.ProcessIndexBatch(t.Context(), m, m.add(sampleBooks()...), 1, adapter.BatchOptions{Commit: true, Silent: true}))
	require.NoError(t, a.OptimizeIndex(t.Context()))
	require.NoError(t, a.Close())

	// When: it is reopened
	a, err = NewSQLiteAdapter(path)
	require.NoError(t, err)
	defer a.Close()

	// Then: the documents are still searchable
	ids, err := a.FindIDsByIndex(t.Context(), m, adapter.Query{QueryString: "genre:tech"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestSQLiteAdapter_CorruptFileIsCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not sqlite"), 0644))

	a, err := NewSQLiteAdapter(path)

	require.NoError(t, err)
	defer a.Close()
	ids, err := a.FindIDsByIndex(t.Context(), newBookModel(t, "Book"), adapter.Query{})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLiteAdapter_FieldType(t *testing.T) {
	a := &SQLiteAdapter{}

	assert.Equal(t, "INTEGER", a.FieldType(schema.FieldInteger))
	assert.Equal(t, "REAL", a.FieldType(schema.FieldFloat))
	assert.Equal(t, "TEXT", a.FieldType(schema.FieldText))
	assert.Equal(t, "TEXT", a.FieldType(schema.FieldDate))
}

func TestSQLiteAdapter_SingleWritesFollowAutoCommit(t *testing.T) {
	// Given: a file-backed index and a model with AutoCommit off
	a, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer a.Close()
	m := newBookModel(t, "Book")
	m.cfg.AutoCommit = false
	r := m.add(sampleBooks()[0])[0]

	// When: saving and destroying
	require.NoError(t, a.IndexSave(t.Context(), m, r))
	require.NoError(t, a.IndexDestroy(t.Context(), m, r))

	// Then: the WAL is left alone
	assert.Zero(t, a.checkpoints)

	// When: AutoCommit is back on
	m.cfg.AutoCommit = true
	require.NoError(t, a.IndexSave(t.Context(), m, r))
	require.NoError(t, a.IndexDestroy(t.Context(), m, r))

	// Then: each write is checkpointed
	assert.Equal(t, 2, a.checkpoints)
}

func TestSQLiteAdapter_BatchCommitCheckpoints(t *testing.T) {
	a, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer a.Close()
	m := newBookModel(t, "Book")
	items := m.add(sampleBooks()...)

	require.NoError(t, a.ProcessIndexBatch(t.Context(), m, items, 1, adapter.BatchOptions{Silent: true}))
	assert.Zero(t, a.checkpoints)

	require.NoError(t, a.ProcessIndexBatch(t.Context(), m, items, 2, adapter.BatchOptions{Commit: true, Silent: true}))
	assert.Equal(t, 1, a.checkpoints)
}

func TestRankExpression_WeightsColumnsByBoost(t *testing.T) {
	m := newWeightedModel(t, 2.5, 0)
	m.cfg.DefaultBoost = 1.5
	m.cfg.IncludeAssociations("shelves")

	expr := rankExpression(m, []string{"title", "author", "shelves"})

	assert.Equal(t, `bm25("bi_book", 0, 2.5, 1.5, 1.5)`, expr)
}
