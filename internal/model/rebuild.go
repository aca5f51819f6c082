package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

const defaultBatchSize = 100

// RebuildOptions control how batches are written.
type RebuildOptions struct {
	// Drop clears the model's documents before the first batch.
	Drop bool
	// BatchSize is the streaming buffer size. Defaults to the finder batch
	// size.
	BatchSize int
	// Commit and Optimize default to true when nil.
	Commit   *bool
	Optimize *bool
	// Silent suppresses progress logging.
	Silent bool
}

// FinderOptions control how records are read from the primary store.
type FinderOptions struct {
	// BatchSize is the page size, 100 by default.
	BatchSize int
	// View selects the indexed fields, "default" when empty.
	View string
	// Offset skips that many records, for resuming a paged rebuild.
	Offset int
	// StartKey and StopKey bound a streaming rebuild.
	StartKey string
	StopKey  string
	Order    []string
}

// Bool returns a pointer to v, for RebuildOptions.Commit and Optimize.
func Bool(v bool) *bool { return &v }

// RebuildError reports a failed rebuild and how far it got.
type RebuildError struct {
	Type string
	// Processed counts records read before the failure.
	Processed int
	// Batch is the sequence number of the last batch attempted.
	Batch int
	Err   error
}

func (e *RebuildError) Error() string {
	return fmt.Sprintf("rebuild %s failed after %d records (batch %d): %v", e.Type, e.Processed, e.Batch, e.Err)
}

func (e *RebuildError) Unwrap() error { return e.Err }

// Rebuild reindexes every record from the primary store and returns the
// number of records processed.
//
// A Scanner source is streamed into buffers of RebuildOptions.BatchSize;
// the non-empty tail is sent as one more batch. A PagedFinder source is
// read a page at a time, each page one batch, until a page comes back
// empty or short. Batch sequence numbers start at 1 and always increase.
//
// The source capability, the configuration and the view are checked before
// any adapter call. Batch failures are not retried; a failed rebuild returns
// zero and the *RebuildError carries the count reached. Failures are logged
// unless Silent is set.
func (m *Model[T]) Rebuild(ctx context.Context, opts RebuildOptions, fo FinderOptions) (int, error) {
	if fo.BatchSize <= 0 {
		fo.BatchSize = defaultBatchSize
	}
	if fo.View == "" {
		fo.View = schema.DefaultView
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = fo.BatchSize
	}
	commit := opts.Commit == nil || *opts.Commit
	optimize := opts.Optimize == nil || *opts.Optimize

	scanner, canScan := m.source.(Scanner[T])
	pager, canPage := m.source.(PagedFinder[T])
	if !canScan && !canPage {
		return 0, m.noIteration()
	}
	if err := m.cfg.Validate(); err != nil {
		return 0, err
	}
	fields, err := m.cfg.ViewFieldNames(fo.View)
	if err != nil {
		return 0, err
	}
	a, err := m.Adapter(ctx)
	if err != nil {
		return 0, err
	}

	log := m.logger.With(slog.String("type", m.indexType))
	if !opts.Silent {
		log.Info("rebuild_started",
			slog.String("adapter", a.Name()),
			slog.String("view", fo.View),
			slog.Int("batch_size", fo.BatchSize),
			slog.Int("offset", fo.Offset),
			slog.String("start_key", fo.StartKey),
			slog.String("stop_key", fo.StopKey))
	}

	processed, batch := 0, 0
	fail := func(err error) (int, error) {
		if !opts.Silent {
			log.Error("rebuild_failed",
				slog.Int("processed", processed),
				slog.Int("batch", batch),
				slog.String("error", err.Error()))
		}
		return 0, &RebuildError{Type: m.indexType, Processed: processed, Batch: batch, Err: err}
	}

	if opts.Drop {
		if !opts.Silent {
			log.Info("rebuild_drop")
		}
		if err := a.DropIndex(ctx, m); err != nil {
			return fail(err)
		}
	}

	target := viewModel[T]{Model: m, view: fo.View}
	bo := adapter.BatchOptions{Commit: commit, Optimize: optimize, BatchSize: opts.BatchSize, Silent: opts.Silent}
	send := func(items []adapter.Record) error {
		batch++
		if err := a.ProcessIndexBatch(ctx, target, items, batch, bo); err != nil {
			return err
		}
		if !opts.Silent {
			log.Debug("rebuild_batch",
				slog.Int("batch", batch),
				slog.Int("size", len(items)),
				slog.Int("processed", processed))
		}
		return nil
	}

	if canScan {
		buf := make([]adapter.Record, 0, opts.BatchSize)
		scanOpts := ScanOptions{BatchSize: fo.BatchSize, Fields: fields, StartKey: fo.StartKey, StopKey: fo.StopKey}
		err := scanner.Scan(ctx, scanOpts, func(r T) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			processed++
			buf = append(buf, r)
			if len(buf) >= opts.BatchSize {
				if err := send(buf); err != nil {
					return err
				}
				buf = make([]adapter.Record, 0, opts.BatchSize)
			}
			return nil
		})
		if err != nil {
			return fail(err)
		}
		if len(buf) > 0 {
			if err := send(buf); err != nil {
				return fail(err)
			}
		}
	} else {
		for loop := 0; ; loop++ {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			page := Page{
				Offset: pageOffset(fo.Offset + loop*fo.BatchSize),
				Limit:  fo.BatchSize,
				Fields: fields,
				Order:  fo.Order,
			}
			records, err := pager.FindPage(ctx, page)
			if err != nil {
				return fail(err)
			}
			if len(records) == 0 {
				break
			}
			processed += len(records)
			items := make([]adapter.Record, len(records))
			for i, r := range records {
				items[i] = r
			}
			if err := send(items); err != nil {
				return fail(err)
			}
			if len(records) < fo.BatchSize {
				break
			}
		}
	}

	if optimize && processed > 0 {
		if err := a.OptimizeIndex(ctx); err != nil {
			return fail(err)
		}
	}

	if !opts.Silent {
		if processed > 0 {
			log.Info("rebuild_finished", slog.Int("processed", processed), slog.Int("batches", batch))
		} else {
			log.Info("rebuild_empty")
		}
	}
	return processed, nil
}
