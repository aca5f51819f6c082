package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bierrors "github.com/Aman-CERP/bigindex/internal/errors"
)

func TestRebuild_StreamingSendsFullBatchesThenTail(t *testing.T) {
	// Given: 25 records behind a scanner and a batch size of 10
	m, rec := newBookModel(t, &scanSource{records: books(25)})

	// When: rebuilding
	n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: 10})

	// Then: two full batches and a tail, numbered in sequence
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	batches := rec.batches()
	require.Len(t, batches, 3)
	for i, b := range batches {
		assert.Equal(t, i+1, b.batch)
	}
	assert.Equal(t, []int{10, 10, 5}, []int{batches[0].size, batches[1].size, batches[2].size})
	assert.Equal(t, []string{"batch", "batch", "batch", "optimize"}, rec.ops())
}

func TestRebuild_StreamingFullBatchCountIsFloor(t *testing.T) {
	for _, tc := range []struct{ m, n int }{{0, 10}, {9, 10}, {10, 10}, {11, 10}, {57, 7}, {100, 1}} {
		t.Run(fmt.Sprintf("M=%d,N=%d", tc.m, tc.n), func(t *testing.T) {
			m, rec := newBookModel(t, &scanSource{records: books(tc.m)})

			n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: tc.n})
			require.NoError(t, err)

			full, total := 0, 0
			for _, b := range rec.batches() {
				if b.size == tc.n {
					full++
				}
				total += b.size
			}
			assert.Equal(t, tc.m/tc.n, full)
			assert.Equal(t, tc.m, n)
			assert.Equal(t, tc.m, total)
		})
	}
}

func TestRebuild_RebuildBatchSizeDrivesStreamingBuffer(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(12)})

	_, err := m.Rebuild(context.Background(), RebuildOptions{BatchSize: 4, Silent: true}, FinderOptions{})

	require.NoError(t, err)
	assert.Len(t, rec.batches(), 3)
	assert.Equal(t, 4, rec.batches()[0].opts.BatchSize)
}

func TestRebuild_PagedStopsOnShortPage(t *testing.T) {
	src := &pageSource{records: books(25)}
	m, rec := newBookModel(t, src)

	n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 25, n)
	require.Len(t, src.pages, 3)
	assert.Equal(t, []int{0, 11, 21}, []int{src.pages[0].Offset, src.pages[1].Offset, src.pages[2].Offset})
	assert.Equal(t, 10, src.pages[0].Limit)
	assert.Len(t, rec.batches(), 3)
}

func TestRebuild_PagedStopsOnEmptyPage(t *testing.T) {
	src := &pageSource{records: books(20)}
	m, rec := newBookModel(t, src)

	n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Len(t, src.pages, 3, "the third page comes back empty")
	assert.Len(t, rec.batches(), 2)
}

func TestRebuild_PagedOffsetResumes(t *testing.T) {
	src := &pageSource{records: books(25)}
	m, rec := newBookModel(t, src)

	n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: 10, Offset: 5})

	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 6, src.pages[0].Offset)
	assert.Equal(t, "Title 6", rec.batches()[0].docs[0]["title"])
}

func TestRebuild_DropRunsOnceBeforeAnyBatch(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(30)})

	_, err := m.Rebuild(context.Background(), RebuildOptions{Drop: true, Silent: true}, FinderOptions{BatchSize: 10})

	require.NoError(t, err)
	ops := rec.ops()
	assert.Equal(t, "drop", ops[0])
	drops := 0
	for _, op := range ops {
		if op == "drop" {
			drops++
		}
	}
	assert.Equal(t, 1, drops)
}

func TestRebuild_NoIterationCapability(t *testing.T) {
	// Given: a source with neither capability
	m, rec := newBookModel(t, struct{}{})

	// When: rebuilding with drop requested
	n, err := m.Rebuild(context.Background(), RebuildOptions{Drop: true}, FinderOptions{})

	// Then: it fails before touching the adapter
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, bierrors.ErrNoIterationCapability))
	assert.True(t, bierrors.IsFatal(err))
	assert.Empty(t, rec.calls)
}

func TestRebuild_UnknownViewFailsBeforeAdapterCalls(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(3)})

	_, err := m.Rebuild(context.Background(), RebuildOptions{Drop: true}, FinderOptions{View: "nope"})

	assert.True(t, errors.Is(err, bierrors.ErrUnknownView))
	assert.Empty(t, rec.calls)
}

// blankDefaults is a recording adapter that proposes no identity fields.
type blankDefaults struct{ *recordingAdapter }

func (blankDefaults) DefaultTypeField() string       { return "" }
func (blankDefaults) DefaultPrimaryKeyField() string { return "" }

func TestRebuild_MissingIdentityFieldsFailBeforeAdapterCalls(t *testing.T) {
	// Given: an adapter whose defaults leave the type and id fields empty
	rec := newRecorder()
	m, err := New[book]("Book", WithAdapter(blankDefaults{rec}), WithSource(&scanSource{records: books(3)}))
	require.NoError(t, err)

	// When: rebuilding with drop requested
	n, err := m.Rebuild(context.Background(), RebuildOptions{Drop: true, Silent: true}, FinderOptions{})

	// Then: the configuration is rejected and no batch is sent
	assert.Zero(t, n)
	assert.Equal(t, bierrors.ErrCodeConfigInvalid, bierrors.GetCode(err))
	assert.Empty(t, rec.calls)
}

func TestRebuild_SilentFailureDoesNotLog(t *testing.T) {
	var buf bytes.Buffer
	rec := newRecorder()
	rec.failBatch = 1
	m, err := New[book]("Book", WithAdapter(rec), WithSource(&scanSource{records: books(3)}),
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	require.NoError(t, err)
	_, err = m.Index("title")
	require.NoError(t, err)

	_, err = m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{})
	require.Error(t, err)
	assert.Empty(t, buf.String())

	_, err = m.Rebuild(context.Background(), RebuildOptions{}, FinderOptions{})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "rebuild_failed")
}

func TestRebuild_CommitAndOptimizeDefaults(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(3)})

	_, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{})
	require.NoError(t, err)
	assert.True(t, rec.batches()[0].opts.Commit)
	assert.True(t, rec.batches()[0].opts.Optimize)
	assert.Equal(t, 100, rec.batches()[0].opts.BatchSize)
	assert.Equal(t, "optimize", rec.last().op)
}

func TestRebuild_ExplicitFalseOptions(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(3)})

	_, err := m.Rebuild(context.Background(), RebuildOptions{Commit: Bool(false), Optimize: Bool(false), Silent: true}, FinderOptions{})

	require.NoError(t, err)
	assert.False(t, rec.batches()[0].opts.Commit)
	assert.Equal(t, []string{"batch"}, rec.ops())
}

func TestRebuild_EmptySourceSkipsOptimize(t *testing.T) {
	m, rec := newBookModel(t, &pageSource{})

	n, err := m.Rebuild(context.Background(), RebuildOptions{}, FinderOptions{})

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.calls)
}

func TestRebuild_BatchFailureReportsProgress(t *testing.T) {
	m, rec := newBookModel(t, &scanSource{records: books(30)})
	rec.failBatch = 2

	n, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true}, FinderOptions{BatchSize: 10})

	var rerr *RebuildError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 20, rerr.Processed)
	assert.Equal(t, 2, rerr.Batch)
	assert.Zero(t, n, "partial progress only travels on the error")
	assert.True(t, errors.Is(err, bierrors.ErrIndexBackend))
	assert.NotContains(t, rec.ops(), "optimize")
}

func TestRebuild_ViewRestrictsDocuments(t *testing.T) {
	src := &scanSource{records: books(2)}
	m, rec := newBookModel(t, src)
	m.IndexView("summary", "title")

	_, err := m.Rebuild(context.Background(), RebuildOptions{Silent: true},
		FinderOptions{View: "summary", StartKey: "a", StopKey: "z"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Title 1"}, rec.batches()[0].docs[0])
	assert.Equal(t, []string{"title"}, src.opts.Fields)
	assert.Equal(t, "a", src.opts.StartKey)
	assert.Equal(t, "z", src.opts.StopKey)
}

func TestRebuild_CanceledContext(t *testing.T) {
	m, rec := newBookModel(t, &pageSource{records: books(5)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Rebuild(ctx, RebuildOptions{Silent: true}, FinderOptions{})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rec.batches())
}
